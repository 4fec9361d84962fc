package booking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/jinzhu/now"
)

const (
	analyticsMonths = 12
	analyticsWeeks  = 12
	topServices     = 5
)

type CategoryStat struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Earnings float64 `json:"earnings"`
}

type MonthlyStat struct {
	Month     string  `json:"month"` // YYYY-MM
	Bookings  int     `json:"bookings"`
	Completed int     `json:"completed"`
	Earnings  float64 `json:"earnings"`
}

type WeeklyStat struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Completed int       `json:"completed"`
	Earnings  float64   `json:"earnings"`
}

type ServiceStat struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Earnings float64 `json:"earnings"`
}

type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

type Analytics struct {
	WorkerID             uint           `json:"workerId"`
	TotalServices        int            `json:"totalServices"`
	CompletedServices    int            `json:"completedServices"`
	CompletionRate       int            `json:"completionRate"`
	TotalEarnings        float64        `json:"totalEarnings"`
	AverageEarnings      float64        `json:"averageEarnings"`
	CustomerSatisfaction int            `json:"customerSatisfaction"`
	Categories           []CategoryStat `json:"categories"`
	Monthly              []MonthlyStat  `json:"monthly"`
	Weekly               []WeeklyStat   `json:"weekly"`
	TopServices          []ServiceStat  `json:"topServices"`
	StatusCounts         StatusCounts   `json:"statusCounts"`
}

// WorkerAnalytics summarises the bookings assigned to workerID. Workers may
// only read their own analytics; admins must name the worker. Bookings
// cancelled while assigned still count towards the worker's totals.
func (s *Service) WorkerAnalytics(ctx context.Context, actor models.Actor, workerID uint) (*Analytics, error) {
	if workerID == 0 {
		if actor.Role == models.RoleAdmin {
			return nil, apperror.Validation("worker id is required")
		}
		workerID = actor.ID
	}
	if actor.Role != models.RoleAdmin && (actor.Role != models.RoleWorker || actor.ID != workerID) {
		return nil, apperror.Forbidden("not allowed to view these analytics")
	}

	bookings, err := s.store.ListWorkedBy(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("load worker bookings: %w", err)
	}
	a := Summarize(bookings, s.now())
	a.WorkerID = workerID
	return a, nil
}

// Summarize computes analytics over bookings as of at. Raw monthly counts use
// the scheduled service date; completion counts and earnings use completedAt.
func Summarize(bookings []models.Booking, at time.Time) *Analytics {
	a := &Analytics{
		Categories:  []CategoryStat{},
		Monthly:     []MonthlyStat{},
		Weekly:      []WeeklyStat{},
		TopServices: []ServiceStat{},
	}
	if len(bookings) == 0 {
		return a
	}

	var ratingSum, rated int
	categories := map[string]*CategoryStat{}
	services := map[string]*ServiceStat{}

	for i := range bookings {
		b := &bookings[i]
		a.TotalServices++
		completed := b.Status == models.BookingStatusCompleted

		switch b.Status {
		case models.BookingStatusPending, models.BookingStatusConfirmed:
			a.StatusCounts.Pending++
		case models.BookingStatusInProgress:
			a.StatusCounts.InProgress++
		case models.BookingStatusCompleted:
			a.StatusCounts.Completed++
		case models.BookingStatusCancelled:
			a.StatusCounts.Cancelled++
		}

		if completed {
			a.CompletedServices++
			a.TotalEarnings += b.Amount
			if b.Rating != nil {
				ratingSum += *b.Rating
				rated++
			}
		}

		category := b.ServiceCategory
		if category == "" {
			category = "uncategorized"
		}
		cs, ok := categories[category]
		if !ok {
			cs = &CategoryStat{Category: category}
			categories[category] = cs
		}
		cs.Count++

		ss, ok := services[b.ServiceName]
		if !ok {
			ss = &ServiceStat{Name: b.ServiceName, Category: category}
			services[b.ServiceName] = ss
		}
		ss.Count++

		if completed {
			cs.Earnings += b.Amount
			ss.Earnings += b.Amount
		}
	}

	a.TotalEarnings = round2(a.TotalEarnings)
	a.CompletionRate = int(math.Round(float64(a.CompletedServices) / float64(a.TotalServices) * 100))
	if a.CompletedServices > 0 {
		a.AverageEarnings = round2(a.TotalEarnings / float64(a.CompletedServices))
	}
	if rated > 0 {
		a.CustomerSatisfaction = int(math.Round(float64(ratingSum) / float64(rated) * 20))
	}

	for _, cs := range categories {
		cs.Earnings = round2(cs.Earnings)
		a.Categories = append(a.Categories, *cs)
	}
	sort.Slice(a.Categories, func(i, j int) bool {
		if a.Categories[i].Count != a.Categories[j].Count {
			return a.Categories[i].Count > a.Categories[j].Count
		}
		return a.Categories[i].Category < a.Categories[j].Category
	})

	for _, ss := range services {
		ss.Earnings = round2(ss.Earnings)
		a.TopServices = append(a.TopServices, *ss)
	}
	sort.Slice(a.TopServices, func(i, j int) bool {
		if a.TopServices[i].Count != a.TopServices[j].Count {
			return a.TopServices[i].Count > a.TopServices[j].Count
		}
		return a.TopServices[i].Name < a.TopServices[j].Name
	})
	if len(a.TopServices) > topServices {
		a.TopServices = a.TopServices[:topServices]
	}

	a.Monthly = monthlySeries(bookings, at)
	a.Weekly = weeklySeries(bookings, at)
	return a
}

func monthlySeries(bookings []models.Booking, at time.Time) []MonthlyStat {
	current := now.With(at).BeginningOfMonth()
	series := make([]MonthlyStat, analyticsMonths)
	index := make(map[string]int, analyticsMonths)
	for i := 0; i < analyticsMonths; i++ {
		month := current.AddDate(0, i-(analyticsMonths-1), 0).Format("2006-01")
		series[i] = MonthlyStat{Month: month}
		index[month] = i
	}

	for i := range bookings {
		b := &bookings[i]
		if d, err := time.ParseInLocation("2006-01-02", b.Date, at.Location()); err == nil {
			if idx, ok := index[d.Format("2006-01")]; ok {
				series[idx].Bookings++
			}
		}
		if b.Status == models.BookingStatusCompleted && b.CompletedAt != nil {
			if idx, ok := index[b.CompletedAt.In(at.Location()).Format("2006-01")]; ok {
				series[idx].Completed++
				series[idx].Earnings += b.Amount
			}
		}
	}
	for i := range series {
		series[i].Earnings = round2(series[i].Earnings)
	}
	return series
}

// weeklySeries buckets completions into rolling 7-day windows ending at at,
// oldest first. A window includes its end and excludes its start.
func weeklySeries(bookings []models.Booking, at time.Time) []WeeklyStat {
	const week = 7 * 24 * time.Hour
	series := make([]WeeklyStat, analyticsWeeks)
	for i := 0; i < analyticsWeeks; i++ {
		end := at.Add(-time.Duration(analyticsWeeks-1-i) * week)
		series[i] = WeeklyStat{Start: end.Add(-week), End: end}
	}

	for i := range bookings {
		b := &bookings[i]
		if b.Status != models.BookingStatusCompleted || b.CompletedAt == nil {
			continue
		}
		for j := range series {
			if b.CompletedAt.After(series[j].Start) && !b.CompletedAt.After(series[j].End) {
				series[j].Completed++
				series[j].Earnings += b.Amount
				break
			}
		}
	}
	for i := range series {
		series[i].Earnings = round2(series[i].Earnings)
	}
	return series
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
