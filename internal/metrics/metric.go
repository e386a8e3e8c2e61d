package metrics

import (
	"github.com/venuepulse/backend/internal/models"
)

type Kind string

const (
	KindSessions        Kind = "sessions"
	KindSatisfaction    Kind = "satisfaction"
	KindResponseTime    Kind = "responseTime"
	KindCompletionRate  Kind = "completionRate"
	KindNPS             Kind = "nps"
	KindEmailsSent      Kind = "emailsSent"
	KindEmailsDelivered Kind = "emailsDelivered"
	KindEmailsFailed    Kind = "emailsFailed"
	KindResponseRate    Kind = "responseRate"
	KindActiveAlerts    Kind = "activeAlerts"
	KindAcknowledgeTime Kind = "acknowledgeTime"
)

type Polarity int

const (
	HigherIsBetter Polarity = iota
	LowerIsBetter
)

// Metric is one KPI. value computes the KPI over any set of events; point,
// when set, computes the plotted per-bucket value instead.
type Metric struct {
	Kind     Kind
	Polarity Polarity
	// Additive metrics sum across venues and buckets.
	Additive bool

	value func(Events) *float64
	point func(Events) *float64
}

// Value is the metric over the given events. Nil means undefined.
func (m Metric) Value(e Events) *float64 {
	return m.value(e)
}

// Point is the sparkline value for one bucket's events.
func (m Metric) Point(e Events) *float64 {
	if m.point != nil {
		return m.point(e)
	}
	return m.value(e)
}

// Registry holds every metric in snapshot order.
var Registry = []Metric{
	{Kind: KindSessions, Additive: true, value: countSessions},
	{Kind: KindSatisfaction, value: satisfaction},
	{Kind: KindResponseTime, Polarity: LowerIsBetter, value: responseTime},
	{Kind: KindCompletionRate, value: completionRate},
	{Kind: KindNPS, value: npsScore, point: npsChartPoint},
	{Kind: KindEmailsSent, Additive: true, value: emailsSent},
	{Kind: KindEmailsDelivered, Additive: true, value: emailsDelivered},
	{Kind: KindEmailsFailed, Polarity: LowerIsBetter, Additive: true, value: emailsFailed},
	{Kind: KindResponseRate, value: responseRate},
	{Kind: KindActiveAlerts, Polarity: LowerIsBetter, Additive: true, value: activeAlerts},
	{Kind: KindAcknowledgeTime, Polarity: LowerIsBetter, value: acknowledgeTime},
}

// Lookup finds a registered metric by kind.
func Lookup(kind Kind) (Metric, bool) {
	for _, m := range Registry {
		if m.Kind == kind {
			return m, true
		}
	}
	return Metric{}, false
}

func countSessions(e Events) *float64 {
	return ptr(float64(len(sessions(e.Feedback)) + len(e.Assistance)))
}

func satisfaction(e Events) *float64 {
	var sum, n float64
	for _, f := range e.Feedback {
		if f.Rating == nil {
			continue
		}
		sum += float64(*f.Rating)
		n++
	}
	return ptr(mean(sum, n))
}

func responseTime(e Events) *float64 {
	var sum, n float64
	for _, a := range e.Assistance {
		if a.ResolvedAt == nil {
			continue
		}
		sum += a.ResolvedAt.Sub(a.CreatedAt).Minutes()
		n++
	}
	for _, s := range sessions(e.Feedback) {
		if !s.resolved {
			continue
		}
		sum += s.resolvedAt.Sub(s.createdAt).Minutes()
		n++
	}
	return ptr(mean(sum, n))
}

func completionRate(e Events) *float64 {
	var resolved int
	fb := sessions(e.Feedback)
	for _, s := range fb {
		if s.resolved {
			resolved++
		}
	}
	for _, a := range e.Assistance {
		if a.ResolvedAt != nil {
			resolved++
		}
	}
	total := len(fb) + len(e.Assistance)
	if total == 0 {
		return ptr(0)
	}
	return ptr(100 * float64(resolved) / float64(total))
}

// NPSBreakdown is the score distribution behind an NPS value.
type NPSBreakdown struct {
	Promoters  int     `json:"promoters"`
	Passives   int     `json:"passives"`
	Detractors int     `json:"detractors"`
	Total      int     `json:"total"`
	Score      float64 `json:"score"`
}

// ScoreNPS buckets scored submissions into promoters (9-10), passives (7-8)
// and detractors (0-6). Score is 0 when nothing was scored.
func ScoreNPS(subs []models.NPSSubmission) NPSBreakdown {
	var b NPSBreakdown
	for _, s := range subs {
		if s.Score == nil {
			continue
		}
		b.Total++
		switch score := *s.Score; {
		case score >= 9:
			b.Promoters++
		case score <= 6:
			b.Detractors++
		default:
			b.Passives++
		}
	}
	if b.Total > 0 {
		b.Score = 100 * float64(b.Promoters-b.Detractors) / float64(b.Total)
	}
	return b
}

func npsScore(e Events) *float64 {
	return ptr(ScoreNPS(e.NPS).Score)
}

// npsChartPoint maps -100..100 onto 0..100. Buckets without scores plot 0.
func npsChartPoint(e Events) *float64 {
	b := ScoreNPS(e.NPS)
	if b.Total == 0 {
		return ptr(0)
	}
	return ptr((b.Score + 100) / 2)
}

func emailsSent(e Events) *float64 {
	var n int
	for _, s := range e.NPS {
		if s.SentAt != nil {
			n++
		}
	}
	return ptr(float64(n))
}

func emailsDelivered(e Events) *float64 {
	var n int
	for _, s := range e.NPS {
		if s.SentAt != nil && s.SendError == nil {
			n++
		}
	}
	return ptr(float64(n))
}

func emailsFailed(e Events) *float64 {
	var n int
	for _, s := range e.NPS {
		if s.SendError != nil {
			n++
		}
	}
	return ptr(float64(n))
}

// responseRate is undefined, not zero, when nothing was sent.
func responseRate(e Events) *float64 {
	var sent, responded int
	for _, s := range e.NPS {
		if s.SentAt != nil {
			sent++
		}
		if s.Score != nil && s.RespondedAt != nil {
			responded++
		}
	}
	if sent == 0 {
		return nil
	}
	return ptr(100 * float64(responded) / float64(sent))
}

func activeAlerts(e Events) *float64 {
	var n int
	for _, a := range e.Assistance {
		if a.ResolvedAt == nil {
			n++
		}
	}
	return ptr(float64(n))
}

func acknowledgeTime(e Events) *float64 {
	var sum, n float64
	for _, a := range e.Assistance {
		if a.AcknowledgedAt == nil {
			continue
		}
		sum += a.AcknowledgedAt.Sub(a.CreatedAt).Minutes()
		n++
	}
	return ptr(mean(sum, n))
}

func mean(sum, n float64) float64 {
	if n == 0 {
		return 0
	}
	return sum / n
}

func ptr(v float64) *float64 {
	return &v
}
