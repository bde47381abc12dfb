package project

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
)

var errMalformedEvent = errors.New("malformed event")

// manifest is the subset of the service manifest the compiler reads.
type manifest struct {
	Service  serviceName `yaml:"service"  validate:"required"`
	Provider struct {
		Stage string `yaml:"stage"`
	} `yaml:"provider"`
	Functions yaml.Node `yaml:"functions" validate:"-"`
	Custom    struct {
		Alerts yaml.Node `yaml:"alerts"`
	} `yaml:"custom" validate:"-"`
}

// serviceName accepts both "service: name" and "service: {name: name}".
type serviceName string

func (s *serviceName) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var named struct {
			Name string `yaml:"name"`
		}

		if err := node.Decode(&named); err != nil {
			return err
		}

		*s = serviceName(named.Name)

		return nil
	}

	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}

	*s = serviceName(name)

	return nil
}

// functionSpec is one entry of the functions mapping.
type functionSpec struct {
	Name                string      `yaml:"name"`
	Alarms              []alarm.Ref `yaml:"alarms"              validate:"dive"`
	AlarmsInheritGlobal *bool       `yaml:"alarmsInheritGlobal"`
	Events              []eventSpec `yaml:"events"`
}

// eventSpec is one function event; only http and stream are read.
type eventSpec struct {
	HTTP   *httpEvent   `yaml:"http"`
	Stream *streamEvent `yaml:"stream"`
}

// httpEvent accepts "GET users/{id}" or {method, path}.
type httpEvent alarm.HTTPEvent

func (e *httpEvent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		fields := strings.Fields(node.Value)
		if len(fields) != 2 { //nolint:mnd // Method and path.
			return fmt.Errorf("%w: http %q, expected \"METHOD path\"", errMalformedEvent, node.Value)
		}

		e.Method, e.Path = fields[0], fields[1]

		return nil
	}

	var raw alarm.HTTPEvent
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*e = httpEvent(raw)

	return nil
}

// streamEvent accepts a stream ARN or {arn, type}.
type streamEvent alarm.StreamEvent

func (e *streamEvent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.ARN = node.Value
		e.Type = streamTypeOf(node.Value)

		return nil
	}

	var raw alarm.StreamEvent
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.Type == "" {
		if arn, ok := raw.ARN.(string); ok {
			raw.Type = streamTypeOf(arn)
		}
	}

	*e = streamEvent(raw)

	return nil
}

// streamTypeOf guesses the stream type from an ARN.
func streamTypeOf(arn string) string {
	switch {
	case strings.Contains(arn, ":kinesis:"):
		return "kinesis"
	case strings.Contains(arn, ":dynamodb:"):
		return "dynamodb"
	default:
		return ""
	}
}

// descriptor converts a function entry into a descriptor.
func (f *functionSpec) descriptor(name, service, stage string) *alarm.FunctionDescriptor {
	deployed := f.Name
	if deployed == "" {
		deployed = service + "-" + stage + "-" + name
	}

	fn := &alarm.FunctionDescriptor{
		Name:          name,
		DeployedName:  deployed,
		Alarms:        f.Alarms,
		InheritGlobal: f.AlarmsInheritGlobal,
	}

	for _, event := range f.Events {
		if event.HTTP != nil {
			fn.HTTPEvents = append(fn.HTTPEvents, alarm.HTTPEvent{
				Method: strings.ToUpper(event.HTTP.Method),
				Path:   strings.TrimPrefix(event.HTTP.Path, "/"),
			})
		}

		if event.Stream != nil {
			fn.StreamEvents = append(fn.StreamEvents, alarm.StreamEvent(*event.Stream))
		}
	}

	return fn
}
