package queryfeatures

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionshowcase/internal/apperr"
)

func opts() Options {
	o := DefaultOptions()
	o.SearchableFields = []string{"title", "description"}
	return o
}

func TestBuild_EmptyParams(t *testing.T) {
	plan, err := Build(url.Values{}, opts())
	require.NoError(t, err)

	assert.Empty(t, plan.Filter)
	assert.Nil(t, plan.Search)
	assert.Equal(t, []SortField{{Field: "createdAt", Desc: true}}, plan.Sort)
	assert.Equal(t, []string{"version"}, plan.Projection.Exclude)
	assert.Empty(t, plan.Projection.Include)
	assert.Equal(t, 1, plan.Page)
	assert.Equal(t, DefaultLimit, plan.Limit)
}

func TestFilter_StripsReservedKeys(t *testing.T) {
	params := url.Values{
		"page":        {"2"},
		"sort":        {"title"},
		"limit":       {"5"},
		"fields":      {"title"},
		"keyword":     {"villa"},
		"page[gte]":   {"3"},
		"city":        {"Riyadh"},
		"price[gte]":  {"100"},
		"price[lt]":   {"900"},
		"isPublished": {"true"},
	}
	plan, err := Build(params, opts())
	require.NoError(t, err)

	for _, reserved := range DefaultReservedKeys {
		assert.NotContains(t, plan.Filter, reserved)
	}
	assert.Equal(t, []string{"city", "isPublished", "price"}, plan.Filter.Fields())
	assert.Equal(t, []Condition{{Op: OpEq, Values: []string{"Riyadh"}}}, plan.Filter["city"])
	assert.ElementsMatch(t, []Condition{
		{Op: OpGte, Values: []string{"100"}},
		{Op: OpLt, Values: []string{"900"}},
	}, plan.Filter["price"])
}

func TestFilter_Operators(t *testing.T) {
	cases := map[string]Operator{
		"area[gte]": OpGte,
		"area[gt]":  OpGt,
		"area[lte]": OpLte,
		"area[lt]":  OpLt,
	}
	for key, want := range cases {
		plan, err := Build(url.Values{key: {"10"}}, opts())
		require.NoError(t, err, key)
		require.Len(t, plan.Filter["area"], 1)
		assert.Equal(t, want, plan.Filter["area"][0].Op, key)
	}
}

func TestFilter_RepeatedPlainKeyBecomesIn(t *testing.T) {
	plan, err := Build(url.Values{"status": {"upcoming", "ongoing"}}, opts())
	require.NoError(t, err)

	assert.Equal(t, []Condition{{Op: OpIn, Values: []string{"upcoming", "ongoing"}}}, plan.Filter["status"])
}

func TestFilter_RejectsUnknownOperator(t *testing.T) {
	for _, key := range []string{"price[ne]", "price[regex]", "price[]"} {
		_, err := Build(url.Values{key: {"1"}}, opts())
		require.Error(t, err, key)
		assert.True(t, apperr.Is(err, apperr.KindValidation), key)
	}
}

func TestFilter_RejectsMalformedKey(t *testing.T) {
	for _, key := range []string{"price[gte", "price[gte][lt]", "1abc", "a.b", "$where"} {
		_, err := Build(url.Values{key: {"1"}}, opts())
		require.Error(t, err, key)
		assert.True(t, apperr.Is(err, apperr.KindValidation), key)
	}
}

func TestSearch(t *testing.T) {
	plan, err := Build(url.Values{"keyword": {"  sea view "}}, opts())
	require.NoError(t, err)
	require.NotNil(t, plan.Search)
	assert.Equal(t, "sea view", plan.Search.Keyword)
	assert.Equal(t, []string{"title", "description"}, plan.Search.Fields)

	plan, err = Build(url.Values{"keyword": {"   "}}, opts())
	require.NoError(t, err)
	assert.Nil(t, plan.Search)

	noFields := DefaultOptions()
	plan, err = Build(url.Values{"keyword": {"x"}}, noFields)
	require.NoError(t, err)
	assert.Nil(t, plan.Search)
}

func TestSort(t *testing.T) {
	plan, err := Build(url.Values{"sort": {"-price, title,,"}}, opts())
	require.NoError(t, err)
	assert.Equal(t, []SortField{{Field: "price", Desc: true}, {Field: "title"}}, plan.Sort)

	_, err = Build(url.Values{"sort": {"title;drop"}}, opts())
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLimitFields(t *testing.T) {
	plan, err := Build(url.Values{"fields": {"title,city"}}, opts())
	require.NoError(t, err)
	assert.Equal(t, Projection{Include: []string{"title", "city"}}, plan.Projection)

	plan, err = Build(url.Values{"fields": {"-description,-images"}}, opts())
	require.NoError(t, err)
	assert.Equal(t, Projection{Exclude: []string{"description", "images"}}, plan.Projection)

	_, err = Build(url.Values{"fields": {"title,-description"}}, opts())
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPageAndLimitParsing(t *testing.T) {
	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, DefaultLimit},
		{"0", "0", 1, DefaultLimit},
		{"-3", "-1", 1, DefaultLimit},
		{"abc", "x", 1, DefaultLimit},
		{"4", "20", 4, 20},
		{"1", "100000", 1, MaxLimit},
		{"9223372036854775807", "500", MaxPage, MaxLimit},
		{"99999999999999999999", "", 1, DefaultLimit},
	}
	for _, tc := range cases {
		plan, err := Build(url.Values{"page": {tc.page}, "limit": {tc.limit}}, opts())
		require.NoError(t, err)
		assert.Equal(t, tc.wantPage, plan.Page, "page %q", tc.page)
		assert.Equal(t, tc.wantLimit, plan.Limit, "limit %q", tc.limit)
	}
}

func TestOffsetNeverNegative(t *testing.T) {
	plan, err := Build(url.Values{"page": {"9223372036854775807"}, "limit": {"500"}}, opts())
	require.NoError(t, err)
	assert.Positive(t, plan.Offset())
	assert.EqualValues(t, int64(MaxPage-1)*500, plan.Offset())
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, err := New(url.Values{"price[foo]": {"1"}, "sort": {"bad field"}}, opts()).
		Filter().Search().Sort().LimitFields().Plan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operator")
}
