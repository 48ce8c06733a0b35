package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/client"
)

const (
	recentLimit  = 10
	popularLimit = 5
)

type ClassStat struct {
	Class    api.GymClass
	Bookings int
	Revenue  decimal.Decimal
}

// Stats backs the admin overview page.
type Stats struct {
	TotalRevenue decimal.Decimal
	Total        int
	Confirmed    int
	Cancelled    int
	Classes      int
	Recent       []api.Booking
	Popular      []ClassStat
}

// AdminStats summarises all bookings. Revenue counts CONFIRMED bookings
// only; Popular ranks classes by confirmed bookings.
func AdminStats(bookings []api.Booking, classes []api.GymClass) Stats {
	st := Stats{TotalRevenue: decimal.Zero, Total: len(bookings), Classes: len(classes)}

	confirmedByClass := make(map[string]*ClassStat, len(classes))
	popular := make([]ClassStat, len(classes))
	for i, c := range classes {
		popular[i] = ClassStat{Class: c, Revenue: decimal.Zero}
		confirmedByClass[c.ID] = &popular[i]
	}

	for _, b := range bookings {
		switch {
		case b.HasStatus(api.StatusConfirmed):
			price := decimal.NewFromFloat(b.TotalPrice)
			st.Confirmed++
			st.TotalRevenue = st.TotalRevenue.Add(price)
			if cs, ok := confirmedByClass[b.ClassID()]; ok {
				cs.Bookings++
				cs.Revenue = cs.Revenue.Add(price)
			}
		case b.HasStatus(api.StatusCancelled):
			st.Cancelled++
		}
	}

	st.Recent = append([]api.Booking(nil), bookings...)
	sort.SliceStable(st.Recent, func(i, j int) bool {
		return st.Recent[i].CreatedAt.After(st.Recent[j].CreatedAt)
	})
	if len(st.Recent) > recentLimit {
		st.Recent = st.Recent[:recentLimit]
	}

	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Bookings > popular[j].Bookings
	})
	if len(popular) > popularLimit {
		popular = popular[:popularLimit]
	}
	st.Popular = popular
	return st
}

type StatsAPI interface {
	AllBookings(ctx context.Context) client.Result[[]api.Booking]
	ListClasses(ctx context.Context) client.Result[[]api.GymClass]
}

// LoadAdminStats fetches every booking and the class list concurrently.
func LoadAdminStats(ctx context.Context, statsAPI StatsAPI) (Stats, error) {
	var (
		bookings []api.Booking
		classes  []api.GymClass
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res := statsAPI.AllBookings(gctx)
		if !res.Success {
			return fmt.Errorf("load bookings: %w", res.Err())
		}
		bookings = res.Data
		return nil
	})
	g.Go(func() error {
		res := statsAPI.ListClasses(gctx)
		if !res.Success {
			return fmt.Errorf("load classes: %w", res.Err())
		}
		classes = res.Data
		return nil
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return AdminStats(bookings, classes), nil
}
