// Package workbook manages in-memory workbook documents: dirty tracking
// against the last persisted snapshot, add/remove orchestration for the
// queries, charts, and dashboards a workbook references, the auto-save
// lifecycle, and sharing permissions.
package workbook

// QueryRef is a workbook's lightweight reference to a query document.
type QueryRef struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// ChartRef references a chart document along with the query it visualizes.
type ChartRef struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Query     string `json:"query"`
	ChartType string `json:"chart_type"`
}

// DashboardRef references a dashboard document.
type DashboardRef struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Workbook is the document itself: identity plus ordered reference lists.
type Workbook struct {
	Name       string         `json:"name"`
	Owner      string         `json:"owner,omitempty"`
	Title      string         `json:"title"`
	Queries    []QueryRef     `json:"queries"`
	Charts     []ChartRef     `json:"charts"`
	Dashboards []DashboardRef `json:"dashboards"`
}

// Entity path segments used for navigation.
const (
	KindQuery     = "query"
	KindChart     = "chart"
	KindDashboard = "dashboard"
)
