package cfn

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Resource type names emitted by the compiler.
const (
	TypeAlarm          = "AWS::CloudWatch::Alarm"
	TypeCompositeAlarm = "AWS::CloudWatch::CompositeAlarm"
	TypeTopic          = "AWS::SNS::Topic"
	TypeMetricFilter   = "AWS::Logs::MetricFilter"
)

// ErrDuplicateResource is returned when two records claim the same logical ID.
var ErrDuplicateResource = errors.New("duplicate resource identifier")

// Resource is one entry of a template's Resources section.
type Resource struct {
	// Type is the CloudFormation resource type.
	Type string `json:"Type"`
	// DependsOn names a logical ID that must be created first.
	DependsOn string `json:"DependsOn,omitempty"`
	// Properties is one of the *Properties structs of this package.
	Properties any `json:"Properties"`
}

// Resources maps logical IDs to records.
type Resources map[string]Resource

// Add stores res under key and refuses to overwrite an existing entry.
func (r Resources) Add(key string, res Resource) error {
	if _, ok := r[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateResource, key)
	}

	r[key] = res

	return nil
}

// Merge adds every record of other, stopping at the first collision.
func (r Resources) Merge(other Resources) error {
	for _, key := range other.Keys() {
		if err := r.Add(key, other[key]); err != nil {
			return err
		}
	}

	return nil
}

// Keys returns the logical IDs in sorted order.
func (r Resources) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// CountByType returns how many records of each resource type are present.
func (r Resources) CountByType() map[string]int {
	counts := make(map[string]int, 4)
	for _, res := range r {
		counts[res.Type]++
	}

	return counts
}

// Ref builds a {"Ref": id} intrinsic.
func Ref(id string) map[string]any {
	return map[string]any{"Ref": id}
}

// IsIntrinsic reports whether v is a single-key intrinsic function object
// such as {"Ref": ...}, {"Fn::Join": ...} or {"Fn::ImportValue": ...}.
func IsIntrinsic(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}

	for key := range m {
		if key == "Ref" || (len(key) > 4 && key[:4] == "Fn::") {
			return true
		}
	}

	return false
}
