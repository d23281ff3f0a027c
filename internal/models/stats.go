package models

// Stats is the dashboard headline.
type Stats struct {
	EmailsSent      int    `json:"emailsSent"`
	ActiveCampaigns int    `json:"activeCampaigns"`
	EngagedLeads    int    `json:"engagedLeads"`
	SystemHealth    string `json:"systemHealth"`
}

// EngagementPoint is one day of the weekly engagement chart.
type EngagementPoint struct {
	Day     string `json:"day"`
	Sent    int    `json:"sent"`
	Opens   int    `json:"opens"`
	Replies int    `json:"replies"`
}

// EngagementRow is one line of the weekly breakdown tables.
type EngagementRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Sent    int    `json:"sent"`
	Replies int    `json:"replies"`
}

// EngagementBreakdown splits weekly engagement by campaign and by user.
type EngagementBreakdown struct {
	ByCampaign []EngagementRow `json:"byCampaign"`
	ByUser     []EngagementRow `json:"byUser"`
}

// Period is the aggregation window for per-user stats.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Valid reports whether p is one of the supported periods.
func (p Period) Valid() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth
}

// UserStats is a user's activity over one period.
type UserStats struct {
	Period     Period            `json:"period"`
	EmailsSent int               `json:"emailsSent"`
	Replies    int               `json:"replies"`
	Campaigns  int               `json:"campaigns"`
	Activity   []EngagementPoint `json:"activity"`
}
