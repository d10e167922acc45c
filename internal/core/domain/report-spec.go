package domain

// ReportSpec is the JSON document stored as the spec of a report view.
type ReportSpec struct {
	Version           int              `json:"version"`
	PanelSettings     map[string]any   `json:"panelSettings"`
	Blocks            []PanelGridBlock `json:"blocks"`
	Width             string           `json:"width"`
	Authors           []any            `json:"authors"`
	DiscussionThreads []any            `json:"discussionThreads"`
	Ref               map[string]any   `json:"ref"`
}

type PanelGridBlock struct {
	Type     string            `json:"type"`
	Children []TextLeaf        `json:"children"`
	Metadata PanelGridMetadata `json:"metadata"`
}

type TextLeaf struct {
	Text string `json:"text"`
}

type PanelGridMetadata struct {
	OpenViz                bool              `json:"openViz"`
	OpenRunSet             int               `json:"openRunSet"`
	Name                   string            `json:"name"`
	RunSets                []RunSet          `json:"runSets"`
	PanelBankConfig        PanelBankConfig   `json:"panelBankConfig"`
	PanelBankSectionConfig PanelBankSection  `json:"panelBankSectionConfig"`
	CustomRunColors        map[string]string `json:"customRunColors"`
}

type RunSet struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Enabled              bool          `json:"enabled"`
	RunFeed              RunFeed       `json:"runFeed"`
	Project              RunSetProject `json:"project"`
	Search               RunSetSearch  `json:"search"`
	Filters              Filter        `json:"filters"`
	Grouping             []any         `json:"grouping"`
	Sort                 RunSetSort    `json:"sort"`
	Selections           RunSelections `json:"selections"`
	ExpandedRowAddresses []any         `json:"expandedRowAddresses"`
}

type RunFeed struct {
	Version          int            `json:"version"`
	ColumnVisible    map[string]any `json:"columnVisible"`
	ColumnPinned     map[string]any `json:"columnPinned"`
	ColumnWidths     map[string]any `json:"columnWidths"`
	ColumnOrder      []string       `json:"columnOrder"`
	PageSize         int            `json:"pageSize"`
	OnlyShowSelected bool           `json:"onlyShowSelected"`
}

type RunSetProject struct {
	EntityName string `json:"entityName"`
	Name       string `json:"name"`
}

type RunSetSearch struct {
	Query string `json:"query"`
}

type RunSetSort struct {
	Keys []SortKey `json:"keys"`
}

type SortKey struct {
	Key       FilterKey `json:"key"`
	Ascending bool      `json:"ascending"`
}

type RunSelections struct {
	Root   int   `json:"root"`
	Bounds []any `json:"bounds"`
	Tree   []any `json:"tree"`
}

// Filter is a node of the run-set filter tree. Leaves carry Key, Op and Value;
// inner nodes carry Op and Filters.
type Filter struct {
	Op       string     `json:"op"`
	Key      *FilterKey `json:"key,omitempty"`
	Value    any        `json:"value,omitempty"`
	Disabled bool       `json:"disabled"`
	Filters  []Filter   `json:"filters,omitempty"`
}

type FilterKey struct {
	Section string `json:"section"`
	Name    string `json:"name"`
}

type PanelBankConfig struct {
	State    int                `json:"state"`
	Settings PanelBankSettings  `json:"settings"`
	Sections []PanelBankSection `json:"sections"`
}

type PanelBankSettings struct {
	AutoOrganizePrefix int  `json:"autoOrganizePrefix"`
	ShowEmptySections  bool `json:"showEmptySections"`
	SortAlphabetically bool `json:"sortAlphabetically"`
}

type PanelBankSection struct {
	Name               string         `json:"name"`
	IsOpen             bool           `json:"isOpen"`
	Type               string         `json:"type"`
	FlowConfig         any            `json:"flowConfig"`
	Sorted             int            `json:"sorted"`
	LocalPanelSettings map[string]any `json:"localPanelSettings"`
	Panels             []Panel        `json:"panels"`
}

type Panel struct {
	ID       string         `json:"__id__"`
	ViewType string         `json:"viewType"`
	Config   map[string]any `json:"config"`
	Layout   PanelLayout    `json:"layout"`
}

type PanelLayout struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// ComparisonLayout is the fixed layout of the run comparer panel.
var ComparisonLayout = PanelLayout{X: 0, Y: 0, W: 24, H: 15}

// RunIDFilter selects runs whose id is one of ids.
func RunIDFilter(ids ...string) Filter {
	return Filter{
		Op: "OR",
		Filters: []Filter{{
			Op: "AND",
			Filters: []Filter{{
				Op:    "IN",
				Key:   &FilterKey{Section: "run", Name: "name"},
				Value: ids,
			}},
		}},
	}
}

// FilterRunIDs returns the run ids referenced by IN leaves on the run name key.
func (f Filter) FilterRunIDs() []string {
	var ids []string
	if f.Key != nil && f.Key.Section == "run" && f.Key.Name == "name" && f.Op == "IN" && !f.Disabled {
		if v, ok := f.Value.([]string); ok {
			ids = append(ids, v...)
		}
	}
	for _, child := range f.Filters {
		ids = append(ids, child.FilterRunIDs()...)
	}
	return ids
}

// ComparisonSpecInput carries what BuildComparisonSpec needs.
type ComparisonSpecInput struct {
	Entity  string
	Project string
	BaseRun *Run
	NewRun  *Run
}

// BuildComparisonSpec builds a report with one panel grid holding a run set
// scoped to the two runs and a diff-only run comparer panel. newID supplies
// the client-side ids for the run set and panel.
func BuildComparisonSpec(in ComparisonSpecInput, newID func() string) *ReportSpec {
	panel := Panel{
		ID:       newID(),
		ViewType: "Run Comparer",
		Config:   map[string]any{"diffOnly": "split"},
		Layout:   ComparisonLayout,
	}

	runSet := RunSet{
		ID:      newID(),
		Name:    ComparisonRunSet,
		Enabled: true,
		RunFeed: RunFeed{
			Version:       2,
			ColumnVisible: map[string]any{"run:name": false},
			ColumnPinned:  map[string]any{},
			ColumnWidths:  map[string]any{},
			ColumnOrder:   []string{},
			PageSize:      10,
		},
		Project:              RunSetProject{EntityName: in.Entity, Name: in.Project},
		Search:               RunSetSearch{},
		Filters:              RunIDFilter(in.NewRun.ID, in.BaseRun.ID),
		Grouping:             []any{},
		Sort:                 RunSetSort{Keys: []SortKey{{Key: FilterKey{Section: "run", Name: "createdAt"}}}},
		Selections:           RunSelections{Root: 1, Bounds: []any{}, Tree: []any{}},
		ExpandedRowAddresses: []any{},
	}

	section := PanelBankSection{
		Name:               "Report Panels",
		IsOpen:             false,
		Type:               "grid",
		Sorted:             0,
		LocalPanelSettings: map[string]any{},
		Panels:             []Panel{panel},
	}

	return &ReportSpec{
		Version:       reportSpecVersion,
		PanelSettings: map[string]any{},
		Blocks: []PanelGridBlock{{
			Type:     "panel-grid",
			Children: []TextLeaf{{Text: ""}},
			Metadata: PanelGridMetadata{
				OpenViz:    true,
				OpenRunSet: 0,
				Name:       "unused-name",
				RunSets:    []RunSet{runSet},
				PanelBankConfig: PanelBankConfig{
					State:    0,
					Settings: PanelBankSettings{AutoOrganizePrefix: 2},
					Sections: []PanelBankSection{{Name: "Hidden Panels", IsOpen: false, Type: "flow", Panels: []Panel{}, LocalPanelSettings: map[string]any{}}},
				},
				PanelBankSectionConfig: section,
				CustomRunColors:        map[string]string{},
			},
		}},
		Width:             ReportWidthFluid,
		Authors:           []any{},
		DiscussionThreads: []any{},
		Ref:               map[string]any{},
	}
}
