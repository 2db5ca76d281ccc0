package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouseRequest_AcceptsStringNumbers(t *testing.T) {
	body := `{"title":"Flat","description":"d","address":"a",
		"price":"1200.5","bedrooms":"2","bathrooms":1,"size":" 65 ","latitude":"41.01"}`

	var req HouseRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, FlexFloat(1200.5), *req.Price)
	assert.Equal(t, FlexInt(2), *req.Bedrooms)
	assert.Equal(t, FlexInt(1), *req.Bathrooms)
	assert.Equal(t, FlexFloat(65), *req.Size)
	assert.Equal(t, 41.01, *req.Latitude.Ptr())
	assert.Nil(t, req.Longitude.Ptr())
}

func TestFlexNumbers_RejectGarbage(t *testing.T) {
	for _, raw := range []string{`""`, `"abc"`, `"NaN"`, `"Inf"`, `true`, `[1]`} {
		var f FlexFloat
		assert.Error(t, json.Unmarshal([]byte(raw), &f), raw)
	}

	var n FlexInt
	assert.Error(t, json.Unmarshal([]byte(`"2.5"`), &n))
	require.NoError(t, json.Unmarshal([]byte(`3.0`), &n))
	assert.Equal(t, FlexInt(3), n)
}
