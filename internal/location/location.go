// Package location matches free-text Italian geographic areas against
// regions and provinces.
package location

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var regionsYAML []byte

type Province struct {
	Name    string   `yaml:"name"`
	Sigla   string   `yaml:"sigla"`
	Aliases []string `yaml:"aliases"`
}

type Region struct {
	Name      string     `yaml:"name"`
	Slug      string     `yaml:"slug"`
	Aliases   []string   `yaml:"aliases"`
	Provinces []Province `yaml:"provinces"`
}

type dataset struct {
	Regions []Region `yaml:"regions"`
}

type index struct {
	regions []Region
	bySlug  map[string]int
	// normalized region name/alias/slug -> region
	byName map[string]int
	// normalized province name/alias -> region
	byProvince map[string]int
	bySigla    map[string]int
	// every searchable term, longest first, so "reggio emilia" wins over "emilia"
	terms []term
}

type term struct {
	text   string
	region int
}

var idx = mustLoad(regionsYAML)

var siglaRe = regexp.MustCompile(`\(([A-Za-z]{2})\)`)

var nationalTerms = []string{"nazionale", "tutta italia", "tutto il territorio", "italia"}

func mustLoad(b []byte) *index {
	ix, err := load(b)
	if err != nil {
		panic(fmt.Sprintf("location: invalid embedded dataset: %v", err))
	}
	return ix
}

func load(b []byte) (*index, error) {
	var ds dataset
	if err := yaml.Unmarshal(b, &ds); err != nil {
		return nil, err
	}
	if len(ds.Regions) == 0 {
		return nil, fmt.Errorf("no regions")
	}

	ix := &index{
		regions:    ds.Regions,
		bySlug:     map[string]int{},
		byName:     map[string]int{},
		byProvince: map[string]int{},
		bySigla:    map[string]int{},
	}
	for i, r := range ds.Regions {
		if r.Slug == "" || r.Name == "" {
			return nil, fmt.Errorf("region %d: missing name or slug", i)
		}
		ix.bySlug[r.Slug] = i
		names := append([]string{r.Name, strings.ReplaceAll(r.Slug, "-", " ")}, r.Aliases...)
		for _, n := range names {
			if k := Normalize(n); k != "" {
				ix.byName[k] = i
				ix.terms = append(ix.terms, term{text: k, region: i})
			}
		}
		for _, p := range r.Provinces {
			for _, n := range append([]string{p.Name}, p.Aliases...) {
				if k := Normalize(n); k != "" {
					ix.byProvince[k] = i
					ix.terms = append(ix.terms, term{text: k, region: i})
				}
			}
			if p.Sigla != "" {
				ix.bySigla[strings.ToUpper(p.Sigla)] = i
			}
		}
	}
	sort.SliceStable(ix.terms, func(a, b int) bool { return len(ix.terms[a].text) > len(ix.terms[b].text) })
	return ix, nil
}

// Normalize lowercases s, folds accents and turns punctuation into single spaces.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	b := strings.Builder{}
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ContainsWords reports whether the normalized needle appears in the
// normalized haystack on word boundaries.
func ContainsWords(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

func Regions() []Region {
	out := make([]Region, len(idx.regions))
	copy(out, idx.regions)
	return out
}

func RegionBySlug(slug string) (Region, bool) {
	i, ok := idx.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return Region{}, false
	}
	return idx.regions[i], true
}

// ResolveRegion maps a region name, slug, alias, province name or province
// sigla to its region.
func ResolveRegion(input string) (Region, bool) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Region{}, false
	}
	if r, ok := RegionBySlug(raw); ok {
		return r, true
	}
	if len(raw) == 2 {
		if i, ok := idx.bySigla[strings.ToUpper(raw)]; ok {
			return idx.regions[i], true
		}
	}
	k := Normalize(raw)
	if i, ok := idx.byName[k]; ok {
		return idx.regions[i], true
	}
	if i, ok := idx.byProvince[k]; ok {
		return idx.regions[i], true
	}
	return Region{}, false
}

// RegionsIn lists the regions mentioned in a free-text area, directly, via a
// province name, or via a parenthesised sigla like "(MI)".
func RegionsIn(area string) []Region {
	n := Normalize(area)
	if n == "" {
		return nil
	}

	seen := map[int]struct{}{}
	order := make([]int, 0, 2)
	add := func(i int) {
		if _, ok := seen[i]; ok {
			return
		}
		seen[i] = struct{}{}
		order = append(order, i)
	}

	rest := " " + n + " "
	for _, t := range idx.terms {
		needle := " " + t.text + " "
		if strings.Contains(rest, needle) {
			add(t.region)
			// consume the match so "reggio emilia" does not also count as "emilia"
			rest = strings.ReplaceAll(rest, needle, "  ")
		}
	}
	for _, m := range siglaRe.FindAllStringSubmatch(area, -1) {
		if i, ok := idx.bySigla[strings.ToUpper(m[1])]; ok {
			add(i)
		}
	}

	sort.Ints(order)
	out := make([]Region, 0, len(order))
	for _, i := range order {
		out = append(out, idx.regions[i])
	}
	return out
}

// IsNational reports whether the area covers the whole country.
func IsNational(area string) bool {
	n := Normalize(area)
	for _, t := range nationalTerms {
		if ContainsWords(n, t) {
			return true
		}
	}
	return false
}

// MatchesLocation reports whether a posting's area satisfies a location query.
// Plain substring matching is tried first; a query naming a region also
// matches areas that only mention one of its provinces, and national
// postings match every region.
func MatchesLocation(area, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	a := Normalize(area)
	if a == "" {
		return false
	}
	if strings.Contains(a, q) {
		return true
	}

	region, ok := ResolveRegion(query)
	if !ok {
		return false
	}
	if IsNational(area) {
		return true
	}
	for _, r := range RegionsIn(area) {
		if r.Slug == region.Slug {
			// a province query only matches its own province or the whole region
			if _, isProvince := idx.byProvince[q]; isProvince {
				return ContainsWords(a, Normalize(region.Name)) || mentionsAlias(a, region)
			}
			return true
		}
	}
	return false
}

func mentionsAlias(area string, r Region) bool {
	for _, al := range r.Aliases {
		if ContainsWords(area, Normalize(al)) {
			return true
		}
	}
	return false
}

// MatchesEnte reports whether the organization name contains the query.
func MatchesEnte(ente, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	return strings.Contains(Normalize(ente), q)
}
