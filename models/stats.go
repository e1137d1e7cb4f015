package models

// PlatformStats summarizes the public marketplace
type PlatformStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalProjects int64 `json:"totalProjects"`
}

// ProjectCounts reports both readings of a user's project count.
// Stored is the denormalized projectCount which includes unpublished projects.
type ProjectCounts struct {
	Stored    int64 `json:"projectCount"`
	All       int64 `json:"allProjects"`
	Published int64 `json:"publishedProjects"`
}

// CounterReconciliation is the outcome of recomputing a user's counters
type CounterReconciliation struct {
	UID    string   `json:"uid"`
	Before Counters `json:"before"`
	After  Counters `json:"after"`
}

// Drifted reports whether the stored counters disagreed with the relationships
func (r CounterReconciliation) Drifted() bool {
	return r.Before != r.After
}

// Tools lists the AI builders a project can be tagged with
var Tools = []string{
	"Lovable",
	"Bolt",
	"v0",
	"Cursor",
	"Replit",
	"Claude",
	"ChatGPT",
	"GitHub Copilot",
	"Other",
}

// Categories lists the project categories
var Categories = []string{
	"SaaS",
	"Landing Page",
	"Dashboard",
	"E-commerce",
	"Mobile App",
	"AI Tool",
	"Portfolio",
	"Blog",
	"Social",
	"Productivity",
	"Developer Tool",
	"Other",
}
