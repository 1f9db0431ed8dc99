package order

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 5

// Stats is the dashboard summary for one viewer's orders.
type Stats struct {
	TotalOrders     int                 `json:"totalOrders"`
	ByStatus        map[OrderStatus]int `json:"byStatus"`
	TotalRevenue    decimal.Decimal     `json:"totalRevenue"`
	OrdersThisMonth int                 `json:"ordersThisMonth"`
	MonthlyRevenue  decimal.Decimal     `json:"monthlyRevenue"`
	ProblemOrders   int                 `json:"problemOrders"`
	RecentOrders    []Order             `json:"recentOrders"`
}

// AgentPerformance aggregates the orders attributed to one agent.
type AgentPerformance struct {
	AgentID           string          `json:"agentId"`
	Name              string          `json:"name"`
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// ComputeStats summarises orders relative to now's calendar month.
func ComputeStats(orders []Order, now time.Time) Stats {
	st := Stats{
		ByStatus:       make(map[OrderStatus]int, len(Statuses)),
		TotalRevenue:   decimal.Zero,
		MonthlyRevenue: decimal.Zero,
	}
	for _, s := range Statuses {
		st.ByStatus[s] = 0
	}

	for _, o := range orders {
		st.TotalOrders++
		st.ByStatus[o.Status]++
		st.TotalRevenue = st.TotalRevenue.Add(o.TotalAmount)
		if o.ProblemReported {
			st.ProblemOrders++
		}
		if sameMonth(o.CreatedAt, now) {
			st.OrdersThisMonth++
			st.MonthlyRevenue = st.MonthlyRevenue.Add(o.TotalAmount)
		}
	}

	st.RecentOrders = NewestFirst(orders)
	if len(st.RecentOrders) > recentOrdersLimit {
		st.RecentOrders = st.RecentOrders[:recentOrdersLimit]
	}
	return st
}

// ComputeAgentPerformance groups orders by AgentID. names supplies display
// names and guarantees a row for agents without orders; agents seen only in
// orders are appended. Rows are sorted by agent id.
func ComputeAgentPerformance(orders []Order, names map[string]string) []AgentPerformance {
	rows := make(map[string]*AgentPerformance, len(names))
	for id, name := range names {
		rows[id] = &AgentPerformance{AgentID: id, Name: name, TotalRevenue: decimal.Zero}
	}

	for _, o := range orders {
		if o.AgentID == "" {
			continue
		}
		row, ok := rows[o.AgentID]
		if !ok {
			row = &AgentPerformance{AgentID: o.AgentID, Name: o.AgentID, TotalRevenue: decimal.Zero}
			rows[o.AgentID] = row
		}
		row.TotalOrders++
		row.TotalRevenue = row.TotalRevenue.Add(o.TotalAmount)
	}

	out := make([]AgentPerformance, 0, len(rows))
	for _, row := range rows {
		row.AverageOrderValue = decimal.Zero
		if row.TotalOrders > 0 {
			row.AverageOrderValue = row.TotalRevenue.Div(decimal.NewFromInt(int64(row.TotalOrders))).Round(2)
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// NewestFirst returns a copy of orders sorted by CreatedAt descending.
func NewestFirst(orders []Order) []Order {
	out := make([]Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func sameMonth(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}
