package dataset

import "encoding/json"

// MarshalJSON emits an AttrValue as whichever of string/number/array its
// Kind tags, matching the untagged union representation original_source's
// AttributeValue serializes to.
func (a AttrValue) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AttrText:
		return json.Marshal(a.Text)
	case AttrNumber:
		return json.Marshal(a.Number)
	case AttrNumberArray:
		return json.Marshal(a.NumberArray)
	default:
		return json.Marshal(nil)
	}
}

// UnmarshalJSON infers the Kind from the JSON value's shape.
func (a *AttrValue) UnmarshalJSON(data []byte) error {
	var asNumberArray []float64
	if err := json.Unmarshal(data, &asNumberArray); err == nil {
		a.Kind = AttrNumberArray
		a.NumberArray = asNumberArray
		return nil
	}

	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		a.Kind = AttrNumber
		a.Number = asNumber
		return nil
	}

	var asText string
	if err := json.Unmarshal(data, &asText); err == nil {
		a.Kind = AttrText
		a.Text = asText
		return nil
	}

	return json.Unmarshal(data, &a.Text)
}
