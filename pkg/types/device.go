package types

import (
	"strconv"
	"strings"
	"time"
)

// DeviceRecord is the raw device tree as returned by the ACS. Leaves are
// either bare values or objects carrying "_value"/"_type". The engine never
// mutates a record; writes go through explicit tasks.
type DeviceRecord map[string]any

// ID returns the ACS device identifier.
func (d DeviceRecord) ID() string {
	s, _ := d.GetLeafValue("_id")
	return s
}

// Manufacturer returns the reported manufacturer, if any.
func (d DeviceRecord) Manufacturer() string {
	s, _ := d.GetLeafValue("_deviceId._Manufacturer")
	return s
}

// ProductClass returns the reported product class, if any.
func (d DeviceRecord) ProductClass() string {
	s, _ := d.GetLeafValue("_deviceId._ProductClass")
	return s
}

// ModelName returns the device model, preferring the DeviceInfo leaf over the
// registration product class.
func (d DeviceRecord) ModelName() string {
	if s, ok := d.GetLeafValue("InternetGatewayDevice.DeviceInfo.ModelName"); ok {
		return s
	}
	if s, ok := d.GetLeafValue("Device.DeviceInfo.ModelName"); ok {
		return s
	}
	return d.ProductClass()
}

// SerialNumber returns the device serial, checking the registration identity
// first and falling back to the DeviceInfo subtree.
func (d DeviceRecord) SerialNumber() string {
	if s, ok := d.GetLeafValue("_deviceId._SerialNumber"); ok {
		return s
	}
	s, _ := d.GetLeafValue("InternetGatewayDevice.DeviceInfo.SerialNumber")
	return s
}

// LastInform returns the device's last-contact timestamp. ok is false when
// the record carries none.
func (d DeviceRecord) LastInform() (time.Time, bool) {
	node, ok := d.node("_lastInform")
	if !ok {
		return time.Time{}, false
	}
	switch v := node.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	case float64:
		// Epoch milliseconds.
		return time.UnixMilli(int64(v)), true
	}
	return time.Time{}, false
}

// Tags returns the free-form tag list attached to the device.
func (d DeviceRecord) Tags() []string {
	node, ok := d.node("_tags")
	if !ok {
		return nil
	}
	raw, ok := node.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// GetLeafValue walks a dot-separated path and returns the leaf value as a
// string. It unwraps "_value" leaf objects and never panics on malformed
// trees; ok is false when any path segment is absent.
func (d DeviceRecord) GetLeafValue(path string) (string, bool) {
	node, ok := d.node(path)
	if !ok {
		return "", false
	}
	return leafString(node)
}

// FirstLeaf returns the value of the first present path from an ordered
// candidate list.
func (d DeviceRecord) FirstLeaf(paths ...string) (string, bool) {
	for _, p := range paths {
		if v, ok := d.GetLeafValue(p); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// node walks the tree without unwrapping the final leaf.
func (d DeviceRecord) node(path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// leafString renders a leaf node as a string. Objects carrying "_value" are
// unwrapped first; container nodes report not-ok.
func leafString(node any) (string, bool) {
	if m, ok := node.(map[string]any); ok {
		inner, present := m["_value"]
		if !present {
			return "", false
		}
		node = inner
	}
	switch v := node.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}
