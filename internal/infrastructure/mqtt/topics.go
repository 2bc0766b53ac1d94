package mqtt

import "strings"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "opencrate"

// Topics provides builders for OpenCrate MQTT topics under one prefix.
// Using these helpers keeps topic naming consistent between the change
// feed publisher and its subscribers.
//
//	topics := mqtt.NewTopics("opencrate")
//	topics.RecordChange("users", "insert")
//	// Returns: "opencrate/record/users/insert"
type Topics struct {
	prefix string
}

// NewTopics returns a builder rooted at prefix. Surrounding slashes are
// trimmed; an empty prefix selects DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// RecordChange returns the topic for one kind of change on one table.
//
// Example: opencrate/record/users/update
func (t Topics) RecordChange(table, op string) string {
	return t.Prefix() + "/record/" + table + "/" + op
}

// RecordChanges returns a pattern matching every change on table, or on
// every table when table is empty.
//
// Pattern: opencrate/record/users/+ or opencrate/record/+/+
func (t Topics) RecordChanges(table string) string {
	if table == "" {
		table = "+"
	}
	return t.Prefix() + "/record/" + table + "/+"
}

// SystemStatus returns the online/offline status topic.
//
// Example: opencrate/system/status
func (t Topics) SystemStatus() string {
	return t.Prefix() + "/system/status"
}

// AllTopics returns a pattern matching everything under the prefix.
//
// Pattern: opencrate/#
func (t Topics) AllTopics() string {
	return t.Prefix() + "/#"
}
