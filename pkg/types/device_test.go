package types

import (
	"encoding/json"
	"testing"
	"time"
)

func sampleRecord() DeviceRecord {
	return DeviceRecord{
		"_id":         "000C29-ZXHN%20F670L-ZTEG12345678",
		"_lastInform": "2026-08-30T10:00:00.000Z",
		"_tags":       []any{"vip", "pppoe:cust-0042"},
		"_deviceId": map[string]any{
			"_Manufacturer": "ZTE",
			"_ProductClass": "ZXHN F670L",
			"_SerialNumber": "ZTEG12345678",
		},
		"InternetGatewayDevice": map[string]any{
			"DeviceInfo": map[string]any{
				"ModelName": map[string]any{"_value": "F670L", "_type": "xsd:string"},
			},
			"WANDevice": map[string]any{
				"1": map[string]any{
					"X_ZTE-COM_WANPONInterfaceConfig": map[string]any{
						"RXPower": map[string]any{"_value": -21.5, "_type": "xsd:double"},
					},
				},
			},
		},
	}
}

func TestGetLeafValue(t *testing.T) {
	record := sampleRecord()

	tests := []struct {
		path    string
		want    string
		present bool
	}{
		{"_id", "000C29-ZXHN%20F670L-ZTEG12345678", true},
		{"_deviceId._Manufacturer", "ZTE", true},
		{"InternetGatewayDevice.DeviceInfo.ModelName", "F670L", true},
		{"InternetGatewayDevice.WANDevice.1.X_ZTE-COM_WANPONInterfaceConfig.RXPower", "-21.5", true},
		{"InternetGatewayDevice.DeviceInfo.Missing", "", false},
		{"No.Such.Tree", "", false},
		{"InternetGatewayDevice.DeviceInfo.ModelName.TooDeep", "", false},
	}
	for _, tt := range tests {
		got, ok := record.GetLeafValue(tt.path)
		if ok != tt.present || got != tt.want {
			t.Errorf("GetLeafValue(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.present)
		}
	}
}

func TestGetLeafValueContainerIsNotLeaf(t *testing.T) {
	record := sampleRecord()
	if _, ok := record.GetLeafValue("InternetGatewayDevice.DeviceInfo"); ok {
		t.Error("container node should not resolve as a leaf")
	}
}

func TestLastInform(t *testing.T) {
	record := sampleRecord()
	last, ok := record.LastInform()
	if !ok {
		t.Fatal("expected last inform to be present")
	}
	want := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	if !last.Equal(want) {
		t.Errorf("LastInform = %v, want %v", last, want)
	}

	if _, ok := (DeviceRecord{}).LastInform(); ok {
		t.Error("empty record should have no last inform")
	}

	millis := DeviceRecord{"_lastInform": float64(want.UnixMilli())}
	last, ok = millis.LastInform()
	if !ok || !last.Equal(want) {
		t.Errorf("epoch-millis LastInform = (%v, %v), want %v", last, ok, want)
	}
}

func TestTagsAndFirstLeaf(t *testing.T) {
	record := sampleRecord()

	tags := record.Tags()
	if len(tags) != 2 || tags[1] != "pppoe:cust-0042" {
		t.Errorf("Tags = %v", tags)
	}

	value, ok := record.FirstLeaf(
		"VirtualParameters.RXPower",
		"InternetGatewayDevice.WANDevice.1.X_ZTE-COM_WANPONInterfaceConfig.RXPower",
	)
	if !ok || value != "-21.5" {
		t.Errorf("FirstLeaf = (%q, %v), want (-21.5, true)", value, ok)
	}

	if _, ok := record.FirstLeaf("A.B", "C.D"); ok {
		t.Error("FirstLeaf with no present candidates should report not-ok")
	}
}

func TestTaskOperationWireFormat(t *testing.T) {
	op := TaskOperation{
		Path:      "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
		Value:     "Home-WiFi",
		ValueType: ValueTypeString,
	}

	data, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID","Home-WiFi","xsd:string"]`
	if string(data) != want {
		t.Errorf("wire form = %s, want %s", data, want)
	}

	var decoded TaskOperation
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != op {
		t.Errorf("round trip = %+v, want %+v", decoded, op)
	}
}
