package grading

import (
	"sort"
	"strings"

	"github.com/learningopt/immersion/core"
)

// View names
const (
	ViewSupport    = "support"
	ViewProduction = "production"
	ViewTechnical  = "technical"
)

// Category groups
const (
	GroupNTOP       = "NTOP"
	GroupWVS        = "WVS"
	GroupEquip      = "EQUIP"
	GroupAssessment = "ASSESSMENT"
)

// Remarks
const (
	RemarkIncomplete = "INCOMPLETE"
	RemarkComplete   = "COMPLETE"
	RemarkPassed     = "PASSED"

	passingGrade = 75
)

// Category is a written-work score column and its maximum.
type Category struct {
	Code  string `json:"code"`
	Group string `json:"group"`
	Max   int    `json:"max"`
}

var (
	sharedCategories = []Category{
		{"WI", GroupNTOP, 10},
		{"CO", GroupNTOP, 10},
		{"5S", GroupNTOP, 5},
		{"BO", GroupNTOP, 10},
		{"CBO", GroupNTOP, 5},
		{"SDG", GroupNTOP, 5},
		{"OHSA", GroupWVS, 20},
		{"WE", GroupWVS, 10},
		{"UJC", GroupWVS, 15},
		{"ISO", GroupWVS, 10},
		{"PO", GroupWVS, 15},
		{"HR", GroupWVS, 10},
	}

	supportCategories = withShared(
		Category{"SUPP", GroupAssessment, 40},
		Category{"DS", GroupAssessment, 10},
	)

	productionCategories = withShared(
		Category{"WI_EQUIP", GroupEquip, 10},
		Category{"ELEX", GroupEquip, 10},
		Category{"CM", GroupEquip, 10},
		Category{"SPC", GroupEquip, 10},
		Category{"PROD", GroupAssessment, 40},
		Category{"DS", GroupAssessment, 10},
	)

	technicalCategories = withShared(
		Category{"APPDEV", GroupEquip, 20},
		Category{"TECH", GroupAssessment, 46},
		Category{"DS", GroupAssessment, 10},
	)
)

func withShared(extra ...Category) []Category {
	cats := make([]Category, 0, len(sharedCategories)+len(extra))
	cats = append(cats, sharedCategories...)
	return append(cats, extra...)
}

func codesOf(cats []Category, skipGroups ...string) []string {
	codes := make([]string, 0, len(cats))
outer:
	for _, c := range cats {
		for _, g := range skipGroups {
			if c.Group == g {
				continue outer
			}
		}
		codes = append(codes, c.Code)
	}
	return codes
}

// View is one department's grading sheet.
type View struct {
	Name        string
	Title       string
	Departments []string
	Categories  []Category
	// TotalFields are the category codes summed into the written total.
	TotalFields []string
	Denominator int
	PassRemark  string
	Scale       PerformanceScale
}

// MaxScore returns the maximum for category `code`, false if the view does not grade it.
func (v *View) MaxScore(code string) (int, bool) {
	for _, c := range v.Categories {
		if c.Code == code {
			return c.Max, true
		}
	}
	return 0, false
}

// Codes returns the view's category codes in column order.
func (v *View) Codes() []string {
	return codesOf(v.Categories)
}

// Admits reports whether a row of department `dept` is visible in the view.
func (v *View) Admits(dept string) bool {
	dept = core.CleanString(dept, true /* upper */)
	for _, d := range v.Departments {
		if d == dept {
			return true
		}
	}
	return false
}

// defaultViews returns fresh views; catalogs share no slices.
func defaultViews() []*View {
	return []*View{
		{
			Name:        ViewSupport,
			Title:       "Support",
			Departments: []string{"ACCTG", "ERT", "HSN", "HS", "ER"},
			Categories:  append([]Category(nil), supportCategories...),
			TotalFields: codesOf(supportCategories),
			Denominator: 185,
			PassRemark:  RemarkComplete,
			Scale:       append(PerformanceScale(nil), CoarseScale...),
		},
		{
			Name:        ViewProduction,
			Title:       "Production",
			Departments: []string{"PROD"},
			Categories:  append([]Category(nil), productionCategories...),
			TotalFields: codesOf(productionCategories, GroupEquip),
			Denominator: 175,
			PassRemark:  RemarkPassed,
			Scale:       append(PerformanceScale(nil), CoarseScale...),
		},
		{
			Name:        ViewTechnical,
			Title:       "Technical",
			Departments: []string{"IT"},
			Categories:  append([]Category(nil), technicalCategories...),
			TotalFields: codesOf(technicalCategories),
			Denominator: 201,
			PassRemark:  RemarkComplete,
			Scale:       append(PerformanceScale(nil), FineScale...),
		},
	}
}

// Catalog holds the configured views.
type Catalog struct {
	views []*View
}

// NewCatalog returns the default views with the overrides found in conf.Views applied.
func NewCatalog(conf *core.Config) *Catalog {
	cat := &Catalog{views: defaultViews()}
	if conf == nil {
		return cat
	}
	for _, v := range cat.views {
		vc, ok := conf.Views[v.Name]
		if !ok {
			continue
		}
		if vc.Denominator > 0 {
			v.Denominator = vc.Denominator
		}
		if vc.PassRemark != "" {
			v.PassRemark = vc.PassRemark
		}
		if s, ok := ScaleByName(vc.Scale); ok {
			v.Scale = append(PerformanceScale(nil), s...)
		}
	}
	return cat
}

// View returns the view called `name` (case-insensitive).
func (c *Catalog) View(name string) (*View, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range c.views {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, ErrUnknownView
}

// Views returns all views in display order.
func (c *Catalog) Views() []*View {
	return c.views
}

// AllCodes returns the union of every view's category codes, sorted.
func (c *Catalog) AllCodes() []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0)
	for _, v := range c.views {
		for _, code := range v.Codes() {
			if _, ok := seen[code]; !ok {
				seen[code] = struct{}{}
				codes = append(codes, code)
			}
		}
	}
	sort.Strings(codes)
	return codes
}

// maxScore returns the maximum for `code` across views; shared codes carry the same max everywhere.
func (c *Catalog) maxScore(code string) (int, bool) {
	for _, v := range c.views {
		if max, ok := v.MaxScore(code); ok {
			return max, true
		}
	}
	return 0, false
}
