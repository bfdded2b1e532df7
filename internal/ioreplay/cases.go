package ioreplay

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/aurora-skin/skinsafety/pkg/report"
	"github.com/gnames/gnlib"
	"gopkg.in/yaml.v3"
)

type casesFile struct {
	Cases []report.Case `yaml:"cases"`
}

// LoadCases reads replay cases from a YAML file. The file is either a
// list of cases or a mapping with a "cases" key. Cases without a name
// get "case-N", duplicate names get a numeric suffix.
func LoadCases(path string) ([]report.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, CasesReadError(path, err)
	}

	cases, err := parseCases(data)
	if err != nil {
		return nil, CasesParseError(path, err)
	}
	if len(cases) == 0 {
		return nil, NoCasesError(path)
	}
	return cases, nil
}

func parseCases(data []byte) ([]report.Case, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}

	var res []report.Case
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		if err := dec.Decode(&res); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var f casesFile
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
		res = f.Cases
	default:
		return nil, fmt.Errorf("expected a list of cases or a cases mapping")
	}

	seen := make(map[string]int)
	for i := range res {
		c := &res[i]
		c.Name = strings.TrimSpace(gnlib.FixUtf8(c.Name))
		c.Message = gnlib.FixUtf8(c.Message)
		if c.Name == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}
		seen[c.Name]++
		if n := seen[c.Name]; n > 1 {
			c.Name = fmt.Sprintf("%s-%d", c.Name, n)
		}
	}
	return res, nil
}
