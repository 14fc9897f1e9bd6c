package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{`9.99`, 9.99, false},
		{`"9.99"`, 9.99, false},
		{`" 12 "`, 12, false},
		{`0`, 0, false},
		{`1e3`, 1000, false},
		{`"abc"`, 0, true},
		{`"9.99abc"`, 0, true},
		{`""`, 0, true},
		{`null`, 0, true},
		{``, 0, true},
		{`true`, 0, true},
		{`[1]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parsePrice(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseProduct(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		raw := json.RawMessage(`{"id":1,"title":"A","price":"9.99","images":["x.png"],"category":"c","stock":5,"rating":4.2,
			"reviews":[{"rating":5,"comment":"ok","reviewerName":"Eve"}]}`)

		p, id, err := parseProduct(raw)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		item, reason, err := p.toItem()
		require.NoError(t, err)
		assert.Equal(t, ReasonNone, reason)
		assert.Equal(t, "A", item.Title)
		assert.Equal(t, "", item.Description)
		assert.InDelta(t, 9.99, item.Price, 1e-9)
		assert.JSONEq(t, `["x.png"]`, string(item.Images))
		require.NotNil(t, item.Category)
		assert.Equal(t, "c", *item.Category)
		assert.Nil(t, item.Brand)
		assert.Equal(t, int64(5), item.Stock)
		require.NotNil(t, item.Rating)
		assert.InDelta(t, 4.2, *item.Rating, 1e-9)
		assert.Nil(t, item.DiscountPercentage)
		require.Len(t, item.ReviewList(), 1)
		assert.Equal(t, "Eve", item.ReviewList()[0].ReviewerName)
	})

	t.Run("missing id", func(t *testing.T) {
		_, id, err := parseProduct(json.RawMessage(`{"title":"no id","price":1}`))
		assert.ErrorIs(t, err, errMissingID)
		assert.Zero(t, id)
	})

	t.Run("wrongly typed field keeps the id", func(t *testing.T) {
		_, id, err := parseProduct(json.RawMessage(`{"id":42,"stock":"many","price":1}`))
		assert.Error(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("non-object row", func(t *testing.T) {
		_, _, err := parseProduct(json.RawMessage(`"just a string"`))
		assert.Error(t, err)
	})

	t.Run("float id is accepted when integral", func(t *testing.T) {
		p, id, err := parseProduct(json.RawMessage(`{"id":3.0,"price":1,"stock":1.0}`))
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)

		item, _, err := p.toItem()
		require.NoError(t, err)
		assert.Equal(t, int64(3), item.ID)
		assert.Equal(t, int64(1), item.Stock)
	})

	t.Run("fractional id is invalid", func(t *testing.T) {
		_, _, err := parseProduct(json.RawMessage(`{"id":3.5,"price":1}`))
		assert.ErrorContains(t, err, "not an integer")
		assert.NotErrorIs(t, err, errMissingID)
	})

	t.Run("fractional stock is invalid", func(t *testing.T) {
		p, _, err := parseProduct(json.RawMessage(`{"id":4,"price":1,"stock":2.5}`))
		require.NoError(t, err)
		_, reason, err := p.toItem()
		assert.Equal(t, ReasonInvalidRow, reason)
		assert.ErrorContains(t, err, "invalid stock for item with id 4")
	})

	t.Run("reviews keep unknown keys and fractional ratings", func(t *testing.T) {
		p, _, err := parseProduct(json.RawMessage(`{"id":5,"price":1,
			"reviews":[{"rating":4.5,"comment":"ok","helpful":3},{"reviewerName":"x"}]}`))
		require.NoError(t, err)
		item, _, err := p.toItem()
		require.NoError(t, err)

		assert.JSONEq(t, `[{"rating":4.5,"comment":"ok","helpful":3},{"reviewerName":"x"}]`, string(item.Reviews))
		reviews := item.ReviewList()
		require.Len(t, reviews, 2)
		assert.Equal(t, 4.5, reviews[0].Rating)
	})

	t.Run("empty strings stay present", func(t *testing.T) {
		p, _, err := parseProduct(json.RawMessage(`{"id":6,"price":1,"category":"","brand":""}`))
		require.NoError(t, err)
		item, _, err := p.toItem()
		require.NoError(t, err)
		require.NotNil(t, item.Category)
		assert.Equal(t, "", *item.Category)
		require.NotNil(t, item.Brand)
		assert.Nil(t, item.SKU)
	})

	t.Run("images must be an array", func(t *testing.T) {
		for _, images := range []string{`"x.png"`, `{"src":"x.png"}`, `7`} {
			p, _, err := parseProduct(json.RawMessage(`{"id":8,"price":1,"images":` + images + `}`))
			require.NoError(t, err)
			_, reason, err := p.toItem()
			assert.Equal(t, ReasonInvalidRow, reason, images)
			assert.ErrorIs(t, err, errNotArray, images)
		}
	})

	t.Run("null images are absent", func(t *testing.T) {
		p, _, err := parseProduct(json.RawMessage(`{"id":9,"price":1,"images":null}`))
		require.NoError(t, err)
		item, _, err := p.toItem()
		require.NoError(t, err)
		assert.Nil(t, item.Images)
	})

	t.Run("bad price", func(t *testing.T) {
		p, _, err := parseProduct(json.RawMessage(`{"id":7,"title":"B","price":"free"}`))
		require.NoError(t, err)
		_, reason, err := p.toItem()
		assert.Equal(t, ReasonInvalidPrice, reason)
		assert.ErrorContains(t, err, "invalid price value for item with id 7")
	})
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"7", 7, false},
		{"7.0", 7, false},
		{"-2", -2, false},
		{"1e3", 1000, false},
		{"7.25", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInteger(json.Number(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeProducts(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantLen int
		wantErr bool
	}{
		{"array", `{"products":[{"id":1},{"id":2}],"total":2}`, 2, false},
		{"empty array", `{"products":[]}`, 0, false},
		{"missing field", `{"items":[{"id":1}]}`, 0, true},
		{"null field", `{"products":null}`, 0, true},
		{"object field", `{"products":{"id":1}}`, 0, true},
		{"string field", `{"products":"[]"}`, 0, true},
		{"top-level array", `[{"id":1}]`, 0, true},
		{"not json", `<html>`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := decodeProducts([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantLen)
		})
	}
}
