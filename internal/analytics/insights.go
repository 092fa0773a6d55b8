package analytics

import (
	"cmp"
	"fmt"
	"slices"

	"sig-dashboard/internal/models"
)

// maxInsights caps the ranked list handed to the presentation layer.
const maxInsights = 5

// A rule inspects the KPI bundle and the record and either fires one insight
// or returns nil. Rules never fail: unmet preconditions (missing column,
// zero denominator, too few periods) simply mean no entry.
type rule func(*models.KPIBundle, *models.Record) *models.Insight

// catalogue is evaluated in order; the order is the tie-breaker among
// entries of equal priority.
var catalogue = []rule{
	revenueMomentum,
	averageTicket,
	geographicConcentration,
	categoryDependency,
	emergingCategory,
	repeatPurchase,
	businessScale,
}

// Generate evaluates the whole catalogue, stable-sorts fired entries by
// priority ascending and truncates to five. It never fails; no data yields
// an empty list, which is a valid terminal state.
func Generate(bundle *models.KPIBundle, rec *models.Record) []models.Insight {
	out := make([]models.Insight, 0, len(catalogue))
	for _, r := range catalogue {
		if ins := r(bundle, rec); ins != nil {
			out = append(out, *ins)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Insight) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

func revenueMomentum(bundle *models.KPIBundle, _ *models.Record) *models.Insight {
	monthly := bundle.Monthly
	if len(monthly) < 2 {
		return nil
	}
	prev := monthly[len(monthly)-2].Revenue
	last := monthly[len(monthly)-1].Revenue
	if prev == 0 {
		return nil
	}
	growth := (last - prev) / prev * 100

	switch {
	case growth > 15:
		return &models.Insight{
			Priority: 1,
			Type:     models.InsightSuccess,
			Icon:     "🚀",
			Title:    "Accelerated Growth",
			Text:     fmt.Sprintf("Revenue grew %.1f%% over the previous month, well above the healthy range.", growth),
			Action:   "Sustain the current marketing and sales mix and secure inventory for the extra demand.",
		}
	case growth > 5:
		return &models.Insight{
			Priority: 2,
			Type:     models.InsightSuccess,
			Icon:     "📈",
			Title:    "Healthy Growth",
			Text:     fmt.Sprintf("Revenue grew %.1f%% over the previous month.", growth),
			Action:   "Keep the current commercial strategy and monitor the trend.",
		}
	case growth < -10:
		return &models.Insight{
			Priority: 1,
			Type:     models.InsightDanger,
			Icon:     "🚨",
			Title:    "Significant Revenue Drop",
			Text:     fmt.Sprintf("Revenue fell %.1f%% versus the previous month. This needs urgent attention.", -growth),
			Action:   "Review pricing, campaigns and channel performance immediately.",
		}
	case growth < -5:
		return &models.Insight{
			Priority: 2,
			Type:     models.InsightWarning,
			Icon:     "📉",
			Title:    "Revenue Decline",
			Text:     fmt.Sprintf("Revenue fell %.1f%% versus the previous month.", -growth),
			Action:   "Investigate which categories and regions are driving the decline.",
		}
	}
	return nil
}

func averageTicket(bundle *models.KPIBundle, _ *models.Record) *models.Insight {
	switch {
	case bundle.AvgTicket < 150:
		return &models.Insight{
			Priority: 2,
			Type:     models.InsightWarning,
			Icon:     "💰",
			Title:    "Low Average Ticket",
			Text:     fmt.Sprintf("Average ticket is R$ %.2f, below the R$ 150 reference.", bundle.AvgTicket),
			Action:   "Introduce upsell and cross-sell bundles to raise the order value.",
		}
	case bundle.AvgTicket > 500:
		return &models.Insight{
			Priority: 3,
			Type:     models.InsightSuccess,
			Icon:     "💎",
			Title:    "Premium Positioning",
			Text:     fmt.Sprintf("Average ticket is R$ %.2f, a premium position for the segment.", bundle.AvgTicket),
			Action:   "Protect the premium experience and invest in retention of high-value customers.",
		}
	}
	return nil
}

func geographicConcentration(_ *models.KPIBundle, rec *models.Record) *models.Insight {
	states := RevenueByState(rec)
	if len(states) == 0 {
		return nil
	}
	top := states[0]
	switch {
	case top.Share > 50:
		return &models.Insight{
			Priority: 1,
			Type:     models.InsightDanger,
			Icon:     "📍",
			Title:    "Geographic Concentration Risk",
			Text:     fmt.Sprintf("%s represents %.1f%% of total revenue. The business depends heavily on a single region.", top.State, top.Share),
			Action:   "Urgent: diversify into other regions with targeted campaigns and logistics coverage.",
		}
	case top.Share > 35:
		return &models.Insight{
			Priority: 2,
			Type:     models.InsightWarning,
			Icon:     "🗺️",
			Title:    "Geographic Concentration",
			Text:     fmt.Sprintf("%s represents %.1f%% of total revenue.", top.State, top.Share),
			Action:   "Expand marketing reach into under-served states before the concentration deepens.",
		}
	}
	return nil
}

func categoryDependency(_ *models.KPIBundle, rec *models.Record) *models.Insight {
	categories := RevenueByCategory(rec)
	if len(categories) == 0 {
		return nil
	}
	top := categories[0]
	if top.Share <= 40 {
		return nil
	}
	return &models.Insight{
		Priority: 2,
		Type:     models.InsightWarning,
		Icon:     "📦",
		Title:    "Category Dependency",
		Text:     fmt.Sprintf("\"%s\" generates %.1f%% of revenue, concentrating risk in one category.", top.Category, top.Share),
		Action:   "Broaden the portfolio and promote secondary categories to balance the mix.",
	}
}

func emergingCategory(_ *models.KPIBundle, rec *models.Record) *models.Insight {
	categories := RevenueByCategory(rec)
	if len(categories) < 2 {
		return nil
	}
	second := categories[1]
	if second.Share <= 20 {
		return nil
	}
	return &models.Insight{
		Priority: 3,
		Type:     models.InsightInfo,
		Icon:     "🌱",
		Title:    "Emerging Category",
		Text:     fmt.Sprintf("\"%s\" already holds %.1f%% of revenue, a growth opportunity beyond the leader.", second.Category, second.Share),
		Action:   "Allocate campaign budget to accelerate the second-ranked category.",
	}
}

func repeatPurchase(bundle *models.KPIBundle, _ *models.Record) *models.Insight {
	if bundle.TotalCustomers <= 0 || bundle.TotalOrders <= 0 {
		return nil
	}
	perCustomer := float64(bundle.TotalOrders) / float64(bundle.TotalCustomers)
	switch {
	case perCustomer < 1.2:
		return &models.Insight{
			Priority: 2,
			Type:     models.InsightInfo,
			Icon:     "🔁",
			Title:    "Low Repurchase Rate",
			Text:     fmt.Sprintf("Customers place %.2f orders on average; most buy only once.", perCustomer),
			Action:   "Launch a loyalty program and post-purchase campaigns to bring customers back.",
		}
	case perCustomer > 2:
		return &models.Insight{
			Priority: 3,
			Type:     models.InsightSuccess,
			Icon:     "🤝",
			Title:    "Strong Repurchase",
			Text:     fmt.Sprintf("Customers place %.2f orders on average, a strong repurchase pattern.", perCustomer),
			Action:   "Reward recurring customers and use them as a referral channel.",
		}
	}
	return nil
}

func businessScale(bundle *models.KPIBundle, _ *models.Record) *models.Insight {
	switch {
	case bundle.TotalRevenue > 100000:
		return &models.Insight{
			Priority: 3,
			Type:     models.InsightSuccess,
			Icon:     "🏆",
			Title:    "Healthy Business Scale",
			Text:     fmt.Sprintf("Total revenue of R$ %.2f indicates a healthy operation.", bundle.TotalRevenue),
			Action:   "Focus on scaling operations and protecting margin.",
		}
	case bundle.TotalRevenue < 10000:
		return &models.Insight{
			Priority: 2,
			Type:     models.InsightInfo,
			Icon:     "🌟",
			Title:    "Early Stage Operation",
			Text:     fmt.Sprintf("Total revenue of R$ %.2f places the operation at an early stage.", bundle.TotalRevenue),
			Action:   "Focus on customer acquisition before optimizing for margin.",
		}
	}
	return nil
}
