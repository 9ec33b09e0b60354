// Package filter narrows API results on the client side.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"sqctl/pkg/subquery"
)

type FilterMode int

const (
	FilterModeNone FilterMode = iota
	FilterModeExact
	FilterModeContains
	FilterModeRegex
)

type StringFilter struct {
	Pattern string
	Mode    FilterMode
	regex   *regexp.Regexp
}

func NewStringFilter(pattern string, mode FilterMode) (*StringFilter, error) {
	f := &StringFilter{
		Pattern: pattern,
		Mode:    mode,
	}

	if mode == FilterModeRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern '%s': %w", pattern, err)
		}
		f.regex = re
	}

	return f, nil
}

func (f *StringFilter) Match(s string) bool {
	if f == nil {
		return true
	}

	switch f.Mode {
	case FilterModeExact:
		return strings.EqualFold(s, f.Pattern)
	case FilterModeContains:
		return strings.Contains(strings.ToLower(s), strings.ToLower(f.Pattern))
	case FilterModeRegex:
		return f.regex != nil && f.regex.MatchString(s)
	default:
		return true
	}
}

// DeploymentFilter selects deployments from a list. Empty fields match
// everything.
type DeploymentFilter struct {
	Status string
	Type   subquery.DeploymentType
	// Image is a regular expression matched against both image versions.
	Image string
}

// IsZero reports whether the filter would keep every deployment.
func (f DeploymentFilter) IsZero() bool {
	return f.Status == "" && f.Type == "" && f.Image == ""
}

// Apply returns the deployments that match, in their original order.
func (f DeploymentFilter) Apply(deployments []subquery.Deployment) ([]subquery.Deployment, error) {
	if f.IsZero() {
		return deployments, nil
	}

	status, err := optional(f.Status, FilterModeExact)
	if err != nil {
		return nil, err
	}
	image, err := optional(f.Image, FilterModeRegex)
	if err != nil {
		return nil, err
	}

	matched := make([]subquery.Deployment, 0, len(deployments))
	for _, d := range deployments {
		if !status.Match(d.Status) {
			continue
		}
		if f.Type != "" && d.Type != f.Type {
			continue
		}
		if image != nil && !image.Match(d.IndexerImage) && !image.Match(d.QueryImage) {
			continue
		}
		matched = append(matched, d)
	}
	return matched, nil
}

func optional(pattern string, mode FilterMode) (*StringFilter, error) {
	if pattern == "" {
		return nil, nil
	}
	return NewStringFilter(pattern, mode)
}
