// Package types contains the shared data model for the CPE management engine.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// VendorTag identifies the firmware family a device belongs to.
type VendorTag string

const (
	VendorZTE         VendorTag = "zte"
	VendorHuawei      VendorTag = "huawei"
	VendorFiberhome   VendorTag = "fiberhome"
	VendorNokia       VendorTag = "nokia"
	VendorTechnicolor VendorTag = "technicolor"

	// VendorGeneric is the universal fallback. Every logical field must
	// resolve against it.
	VendorGeneric VendorTag = "generic"
)

// AllVendors lists every defined vendor tag, generic last.
func AllVendors() []VendorTag {
	return []VendorTag{
		VendorZTE,
		VendorHuawei,
		VendorFiberhome,
		VendorNokia,
		VendorTechnicolor,
		VendorGeneric,
	}
}

// LogicalField is an abstract configuration target. Keys that are not one of
// the defined fields are treated as literal parameter paths.
type LogicalField string

const (
	FieldSSID24     LogicalField = "ssid_2_4g"
	FieldSSID5      LogicalField = "ssid_5g"
	FieldPassword24 LogicalField = "password_2_4g"
	FieldPassword5  LogicalField = "password_5g"
)

// WiFiFields lists the four logical Wi-Fi configuration fields.
func WiFiFields() []LogicalField {
	return []LogicalField{FieldSSID24, FieldSSID5, FieldPassword24, FieldPassword5}
}

// IsWiFiField reports whether f is one of the defined logical fields.
func IsWiFiField(f LogicalField) bool {
	switch f {
	case FieldSSID24, FieldSSID5, FieldPassword24, FieldPassword5:
		return true
	}
	return false
}

// ValueTypeString is the type tag attached to every parameter value this
// engine writes. The ACS coerces on the device side.
const ValueTypeString = "xsd:string"

// TaskOperation is a single "set parameter value" instruction. On the wire it
// is a three-element array: [path, value, typeTag].
type TaskOperation struct {
	Path      string
	Value     string
	ValueType string
}

// MarshalJSON encodes the operation in the ACS task format.
func (op TaskOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{op.Path, op.Value, op.ValueType})
}

// UnmarshalJSON decodes the three-element wire form.
func (op *TaskOperation) UnmarshalJSON(data []byte) error {
	var triple [3]string
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("parameter operation: %w", err)
	}
	op.Path, op.Value, op.ValueType = triple[0], triple[1], triple[2]
	return nil
}

// DispatchStrategy names how a batch of operations was submitted.
type DispatchStrategy string

const (
	// StrategyFast splits small vendor-known batches into two chunks
	// submitted concurrently.
	StrategyFast DispatchStrategy = "fast"
	// StrategyStandard submits everything as a single task.
	StrategyStandard DispatchStrategy = "standard"
)

// DispatchResult summarizes one dispatch call. It is returned to the caller
// for logging; nothing is persisted.
type DispatchResult struct {
	Success    bool             `json:"success"`
	Vendor     VendorTag        `json:"vendor"`
	TaskID     string           `json:"task_id"`
	Operations int              `json:"operations"`
	ElapsedMs  int64            `json:"elapsed_ms"`
	Strategy   DispatchStrategy `json:"strategy"`
}

// Priority is the urgency attached to a fleet notification.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// ThresholdKind names which fleet scan produced an alert group.
type ThresholdKind string

const (
	ThresholdSignal   ThresholdKind = "signal"
	ThresholdLiveness ThresholdKind = "liveness"
)

// DeviceAlertInfo is one device's entry in an alert group.
type DeviceAlertInfo struct {
	DeviceID     string    `json:"device_id"`
	SerialNumber string    `json:"serial_number"`
	SubscriberID string    `json:"subscriber_id"`
	RXPower      float64   `json:"rx_power,omitempty"`
	OfflineHours float64   `json:"offline_hours,omitempty"`
	LastInform   time.Time `json:"last_inform"`
}

// AlertGroup is built transiently during a scan and discarded after the
// notification is sent.
type AlertGroup struct {
	Kind    ThresholdKind
	Devices []DeviceAlertInfo
}

// SubscriberRecord is a PPPoE subscriber entry used to resolve a
// human-readable subscriber ID during alerting.
type SubscriberRecord struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}
