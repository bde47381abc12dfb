package topics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/logger"
	"github.com/oshokin/alarm-compiler/internal/naming"
)

const (
	arnPrefix        = "arn:"
	topicKey         = "topic"
	notificationsKey = "notifications"
)

// ErrInvalidTopic is returned for topic values of an unsupported shape.
var ErrInvalidTopic = errors.New("invalid topic configuration")

// Actions is the resolved action map. Values are literal ARNs, intrinsic
// objects or {"Ref": ...} pointers to created topics.
type Actions struct {
	// Default maps top-level severities to actions.
	Default map[alarm.Severity]any
	// Named maps standalone named topics to actions.
	Named map[string]any
	// Groups maps topic groups to their severity actions.
	Groups map[string]map[alarm.Severity]any
}

// Compile resolves topicsConfig into an action map and the topic resources
// that must be created.
func Compile(topicsConfig map[string]any) (*Actions, cfn.Resources, error) {
	actions := &Actions{
		Default: make(map[alarm.Severity]any),
		Named:   make(map[string]any),
		Groups:  make(map[string]map[alarm.Severity]any),
	}
	resources := make(cfn.Resources)

	for key, value := range topicsConfig {
		if value == nil {
			continue
		}

		if alarm.IsSeverity(key) {
			action, err := compileTopic(naming.TopicKey("", key), value, resources)
			if err != nil {
				return nil, nil, fmt.Errorf("topics.%s: %w", key, err)
			}

			actions.Default[alarm.Severity(key)] = action

			continue
		}

		if group, ok := asGroup(value); ok {
			compiled := make(map[alarm.Severity]any, len(group))
			for sev, topic := range group {
				if topic == nil {
					continue
				}

				action, err := compileTopic(naming.TopicKey(key, sev), topic, resources)
				if err != nil {
					return nil, nil, fmt.Errorf("topics.%s.%s: %w", key, sev, err)
				}

				compiled[alarm.Severity(sev)] = action
			}

			actions.Groups[key] = compiled

			continue
		}

		action, err := compileTopic(naming.TopicKey("", key), value, resources)
		if err != nil {
			return nil, nil, fmt.Errorf("topics.%s: %w", key, err)
		}

		actions.Named[key] = action
	}

	return actions, resources, nil
}

// For returns the actions of one severity under routing. Routing gaps log a
// warning and yield an empty list.
func (a *Actions) For(ctx context.Context, routing alarm.Routing, sev alarm.Severity) []any {
	out := make([]any, 0, 1)

	if target, ok := routing.BySeverity[sev]; ok {
		if action, found := a.Named[target]; found {
			return append(out, action)
		}

		if action, found := a.Groups[target][sev]; found {
			return append(out, action)
		}

		logger.WarnKV(ctx, "Topic is not configured, alarm gets no action",
			"topic", target, "severity", string(sev))

		return out
	}

	if len(routing.Groups) > 0 {
		for _, group := range routing.Groups {
			actions, found := a.Groups[group]
			if !found {
				logger.WarnKV(ctx, "Topic group is not configured, alarm gets no action from it",
					"group", group, "severity", string(sev))

				continue
			}

			if action, ok := actions[sev]; ok {
				out = append(out, action)
			}
		}

		return out
	}

	if action, ok := a.Default[sev]; ok {
		out = append(out, action)
	}

	return out
}

// compileTopic resolves one topic value, registering a new topic under key
// when the value names a topic to create.
func compileTopic(key string, value any, resources cfn.Resources) (any, error) {
	switch typed := value.(type) {
	case string:
		if typed == "" {
			return nil, fmt.Errorf("%w: empty topic name", ErrInvalidTopic)
		}

		if strings.HasPrefix(typed, arnPrefix) {
			return typed, nil
		}

		return createTopic(key, typed, nil, resources)

	case map[string]any:
		if cfn.IsIntrinsic(typed) {
			return typed, nil
		}

		topic, ok := typed[topicKey]
		if !ok {
			return nil, fmt.Errorf("%w: object without %q", ErrInvalidTopic, topicKey)
		}

		if cfn.IsIntrinsic(topic) {
			return topic, nil
		}

		name, ok := topic.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q must be a name, an ARN or an intrinsic", ErrInvalidTopic, topicKey)
		}

		if strings.HasPrefix(name, arnPrefix) {
			return name, nil
		}

		subscriptions, err := decodeSubscriptions(typed[notificationsKey])
		if err != nil {
			return nil, err
		}

		return createTopic(key, name, subscriptions, resources)

	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ErrInvalidTopic, value)
	}
}

func createTopic(key, name string, subscriptions []cfn.Subscription, resources cfn.Resources) (any, error) {
	if subscriptions == nil {
		subscriptions = []cfn.Subscription{}
	}

	err := resources.Add(key, cfn.Resource{
		Type: cfn.TypeTopic,
		Properties: &cfn.TopicProperties{
			TopicName:    name,
			Subscription: subscriptions,
		},
	})
	if err != nil {
		return nil, err
	}

	return cfn.Ref(key), nil
}

// asGroup reports whether value is a nested severity map.
func asGroup(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	if !ok || len(m) == 0 || cfn.IsIntrinsic(m) {
		return nil, false
	}

	for key := range m {
		if !alarm.IsSeverity(key) {
			return nil, false
		}
	}

	return m, true
}

// decodeSubscriptions reads a notifications list of {protocol, endpoint}.
func decodeSubscriptions(value any) ([]cfn.Subscription, error) {
	if value == nil {
		return nil, nil
	}

	contents, err := yaml.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: notifications: %w", ErrInvalidTopic, err)
	}

	var subscriptions []cfn.Subscription
	if err = yaml.Unmarshal(contents, &subscriptions); err != nil {
		return nil, fmt.Errorf("%w: notifications: %w", ErrInvalidTopic, err)
	}

	return subscriptions, nil
}
