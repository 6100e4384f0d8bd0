// Package paths maps logical configuration fields to the concrete parameter
// paths each vendor's firmware exposes.
//
// A PathSet is ordered and written as a unit: several vendors mirror one
// logical value under both the InternetGatewayDevice and Device data models,
// so a single SSID change can fan out to multiple writes.
package paths

import "github.com/dixzzzzz/axelinkapps-sub000/pkg/types"

// WiFiSubtree is the object refreshed after a Wi-Fi dispatch to hint the ACS
// to re-poll the device.
const WiFiSubtree = "InternetGatewayDevice.LANDevice.1.WLANConfiguration"

// PathSet is an ordered list of parameter paths implementing one logical
// field for one vendor.
type PathSet []string

// table is immutable after init. Dual-band vendors place the 5GHz radio at
// WLANConfiguration index 5 (Huawei, ZTE, FiberHome, Nokia); Technicolor
// firmware exposes the Device:2 model only.
var table = map[types.VendorTag]map[types.LogicalField]PathSet{
	types.VendorZTE: {
		types.FieldSSID24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
			"Device.WiFi.SSID.1.SSID",
		},
		types.FieldSSID5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.SSID",
			"Device.WiFi.SSID.5.SSID",
		},
		types.FieldPassword24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.KeyPassphrase",
		},
		types.FieldPassword5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.PreSharedKey.1.KeyPassphrase",
		},
	},
	types.VendorHuawei: {
		types.FieldSSID24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
		},
		types.FieldSSID5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.SSID",
		},
		types.FieldPassword24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.PreSharedKey",
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.KeyPassphrase",
		},
		types.FieldPassword5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.PreSharedKey.1.PreSharedKey",
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.PreSharedKey.1.KeyPassphrase",
		},
	},
	types.VendorFiberhome: {
		types.FieldSSID24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
		},
		types.FieldSSID5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.SSID",
		},
		types.FieldPassword24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.KeyPassphrase",
		},
		types.FieldPassword5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.PreSharedKey.1.KeyPassphrase",
		},
	},
	types.VendorNokia: {
		types.FieldSSID24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
			"Device.WiFi.SSID.1.SSID",
		},
		types.FieldSSID5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.SSID",
			"Device.WiFi.SSID.2.SSID",
		},
		types.FieldPassword24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.KeyPassphrase",
		},
		types.FieldPassword5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.PreSharedKey.1.KeyPassphrase",
		},
	},
	types.VendorTechnicolor: {
		types.FieldSSID24: {
			"Device.WiFi.SSID.1.SSID",
		},
		types.FieldSSID5: {
			"Device.WiFi.SSID.2.SSID",
		},
		types.FieldPassword24: {
			"Device.WiFi.AccessPoint.1.Security.KeyPassphrase",
		},
		types.FieldPassword5: {
			"Device.WiFi.AccessPoint.2.Security.KeyPassphrase",
		},
	},
	types.VendorGeneric: {
		types.FieldSSID24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
			"Device.WiFi.SSID.1.SSID",
		},
		types.FieldSSID5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.SSID",
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.6.SSID",
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.2.SSID",
			"Device.WiFi.SSID.5.SSID",
			"Device.WiFi.SSID.6.SSID",
			"Device.WiFi.SSID.2.SSID",
		},
		types.FieldPassword24: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.KeyPassphrase",
			"Device.WiFi.AccessPoint.1.Security.KeyPassphrase",
		},
		types.FieldPassword5: {
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.PreSharedKey.1.KeyPassphrase",
			"InternetGatewayDevice.LANDevice.1.WLANConfiguration.6.PreSharedKey.1.KeyPassphrase",
			"Device.WiFi.AccessPoint.5.Security.KeyPassphrase",
		},
	},
}

// Resolve returns the path set for a vendor/field pair. Unknown vendors fall
// back to the generic table, which defines every logical field, so the result
// is never empty for a defined field.
func Resolve(vendor types.VendorTag, field types.LogicalField) PathSet {
	if vendorTable, ok := table[vendor]; ok {
		if set, ok := vendorTable[field]; ok && len(set) > 0 {
			return set
		}
	}
	return table[types.VendorGeneric][field]
}
