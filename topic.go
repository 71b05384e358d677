package reactor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Wire-format limits from the MQTT 3.1.1 spec, used as defaults when an
// Option has not overridden them.
const (
	defaultMaxTopicLength    = 65535
	defaultMaxPayloadSize    = 268435455 // the largest Remaining Length a packet can carry
	defaultMaxIncomingPacket = 268435455
)

func limitOrDefault(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}

// validatePublishTopic enforces MQTT-3.3.2-2: a PUBLISH topic name must not
// contain wildcard characters.
func validatePublishTopic(topic string, o *Options) error {
	if topic == "" {
		return fmt.Errorf("reactor: publish topic must not be empty")
	}
	if max := limitOrDefault(o.MaxTopicLength, defaultMaxTopicLength); len(topic) > max {
		return fmt.Errorf("reactor: publish topic length %d exceeds maximum %d", len(topic), max)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("reactor: publish topic %q contains a wildcard", topic)
	}
	if strings.ContainsRune(topic, 0) {
		return fmt.Errorf("reactor: publish topic contains a null byte")
	}
	if !utf8.ValidString(topic) {
		return fmt.Errorf("reactor: publish topic is not valid utf-8")
	}
	return nil
}

// validateSubscribeFilter enforces MQTT-4.7.1-2/3: '+' and '#' must each
// occupy an entire topic level, and '#' must be the last level.
func validateSubscribeFilter(filter string, o *Options) error {
	if filter == "" {
		return fmt.Errorf("reactor: topic filter must not be empty")
	}
	if max := limitOrDefault(o.MaxTopicLength, defaultMaxTopicLength); len(filter) > max {
		return fmt.Errorf("reactor: topic filter length %d exceeds maximum %d", len(filter), max)
	}
	if strings.ContainsRune(filter, 0) {
		return fmt.Errorf("reactor: topic filter contains a null byte")
	}
	if !utf8.ValidString(filter) {
		return fmt.Errorf("reactor: topic filter is not valid utf-8")
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		if strings.Contains(level, "+") && level != "+" {
			return fmt.Errorf("reactor: %q must occupy an entire topic level", "+")
		}
		if strings.Contains(level, "#") {
			if level != "#" {
				return fmt.Errorf("reactor: %q must occupy an entire topic level", "#")
			}
			if i != len(levels)-1 {
				return fmt.Errorf("reactor: %q must be the last topic level", "#")
			}
		}
	}
	return nil
}

func validatePayloadSize(payload []byte, o *Options) error {
	if max := limitOrDefault(o.MaxPayloadSize, defaultMaxPayloadSize); len(payload) > max {
		return fmt.Errorf("reactor: payload size %d exceeds maximum %d", len(payload), max)
	}
	return nil
}
