package gap

// Advertising Data (AD) type octets (gap.h).
const (
	ADTypeFlags                  uint8 = 0x01
	ADType16BitServiceUUID       uint8 = 0x02
	ADTypeShortenedLocalName     uint8 = 0x08
	ADTypeCompleteLocalName      uint8 = 0x09
	ADTypeTXPowerLevel           uint8 = 0x0A
	ADTypeSlaveConnInterval      uint8 = 0x12
	ADTypeManufacturerSpecific   uint8 = 0xFF
)

// Element is one decoded Length/Type/Value record from an advertising or
// scan-response payload.
type Element struct {
	Type  uint8
	Value []byte
}

// DecodeAdvertisingData walks a Length/Type/Value advertising payload and
// returns every element found. A truncated trailing record (length byte
// claiming more data than remains) is dropped rather than causing a panic
// — the original decodes with asserts that this module deliberately
// relaxes for a host library that must not crash on malformed controller
// input.
func DecodeAdvertisingData(data []byte) []Element {
	var elements []Element
	for len(data) > 0 {
		length := int(data[0])
		if length == 0 || length > len(data)-1 {
			break
		}
		elements = append(elements, Element{
			Type:  data[1],
			Value: data[2 : 1+length],
		})
		data = data[1+length:]
	}
	return elements
}

// LocalName extracts the AD_TYPE_COMPLETE_LOCAL_NAME or
// AD_TYPE_SHORTENED_LOCAL_NAME element, if present, preferring the
// complete name.
func LocalName(elements []Element) (string, bool) {
	var shortened string
	haveShortened := false
	for _, e := range elements {
		switch e.Type {
		case ADTypeCompleteLocalName:
			return string(e.Value), true
		case ADTypeShortenedLocalName:
			shortened = string(e.Value)
			haveShortened = true
		}
	}
	return shortened, haveShortened
}

// ManufacturerID extracts the 16-bit little-endian manufacturer ID from an
// AD_TYPE_MANUFACTURER_SPECIFIC_DATA element, if present.
func ManufacturerID(elements []Element) (uint16, bool) {
	for _, e := range elements {
		if e.Type == ADTypeManufacturerSpecific && len(e.Value) >= 2 {
			return uint16(e.Value[0]) | uint16(e.Value[1])<<8, true
		}
	}
	return 0, false
}
