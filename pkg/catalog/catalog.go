package catalog

import (
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/platform"
	"gopkg.in/yaml.v3"
)

// Catalog is an ordered, immutable list of entries.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from entries, validating each one.
func New(entries []Entry) (*Catalog, error) {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}
	return &Catalog{entries: append([]Entry(nil), entries...)}, nil
}

// Load reads a YAML document of the form "entries: [...]".
func Load(r io.Reader) (*Catalog, error) {
	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, pkgerrors.Classify(pkgerrors.ErrConfigParse, err)
	}
	return New(doc.Entries)
}

// LoadFile reads a catalog file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open catalog %s", path)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Entries returns a copy of all entries.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Category returns the entries of one category, in catalog order.
func (c *Catalog) Category(category string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the entry called name.
func (c *Catalog) Find(name string) (Entry, error) {
	for _, e := range c.entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, pkgerrors.Wrapf(pkgerrors.ErrAssetNotFound, "%s", name)
}

// System is what is known about the machine assets are evaluated against.
type System struct {
	OSName         string
	GPUModel       string
	GPUVendor      string
	SupportsCUDA   bool
	SupportsVulkan bool
}

// Evaluation pairs an entry with its compatibility verdict.
type Evaluation struct {
	Entry  Entry         `json:"entry"`
	Status Compatibility `json:"status"`
}

// cudaIdentifiers are substrings of GPU model names with known CUDA support.
var cudaIdentifiers = []string{
	"rtx", "gb200", "b200", "gh200", "h200", "h100", "l4", "l40",
	"a40", "a10", "a16", "a2", "a100", "a30", "t4",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

func normalizeModel(s string) string {
	s = strings.ToLower(s)
	s = strings.Replace(s, "authenticamd", "amd", 1)
	s = strings.Replace(s, "advanced micro devices", "amd", 1)
	return nonAlnum.ReplaceAllString(s, "")
}

// Evaluate rates every entry against sys, in catalog order.
func (c *Catalog) Evaluate(sys System) []Evaluation {
	out := make([]Evaluation, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, Evaluation{Entry: e, Status: evaluate(e, sys)})
	}
	return out
}

func evaluate(e Entry, sys System) Compatibility {
	osName := platform.NormalizeOS(sys.OSName)
	if e.Platform != "" && e.Platform != platform.AnyOS && platform.NormalizeOS(e.Platform) != osName {
		return Unsupported
	}

	switch e.Backend {
	case "", platform.BackendCPU:
		return Confirmed
	case platform.BackendCUDA:
		gpu := strings.ToLower(sys.GPUModel)
		for _, id := range cudaIdentifiers {
			if sys.SupportsCUDA && strings.Contains(gpu, id) {
				return Confirmed
			}
		}
		return Unsupported
	case platform.BackendVulkan:
		if sys.SupportsVulkan {
			return Confirmed
		}
		return Unsupported
	}

	model := normalizeModel(sys.GPUModel)
	vendor := normalizeModel(sys.GPUVendor)
	if model != "" {
		for _, g := range e.CompatibleGPUs {
			n := normalizeModel(g.Model)
			if n == model || strings.Contains(n, model) || strings.Contains(model, n) {
				return g.Status
			}
		}
	}
	for _, g := range e.CompatibleGPUs {
		switch normalizeModel(g.Model) {
		case "anynvidia":
			if strings.Contains(vendor, "nvidia") {
				return g.Status
			}
		case "anyamd":
			if strings.Contains(vendor, "amd") {
				return g.Status
			}
		case "anyintel":
			if strings.Contains(vendor, "intel") {
				return g.Status
			}
		}
	}
	return Unsupported
}

// Recommend picks the confirmed entry with the most preferred backend.
// Ties keep catalog order.
func Recommend(evals []Evaluation) (Entry, bool) {
	var confirmed []Evaluation
	for _, ev := range evals {
		if ev.Status == Confirmed {
			confirmed = append(confirmed, ev)
		}
	}
	if len(confirmed) == 0 {
		return Entry{}, false
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		return confirmed[i].Entry.Backend.Priority() < confirmed[j].Entry.Backend.Priority()
	})
	return confirmed[0].Entry, true
}
