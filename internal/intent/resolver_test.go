package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ColumnNames(t *testing.T) {
	for _, cmd := range []string{
		"fix column names", "clean headers", "standardize titles", "normalize column names",
		"fix the column headers", "clean column titles", "  FIX   Column\tNames ",
	} {
		assert.True(t, Resolve(cmd).FixNames, cmd)
	}
}

func TestResolve_MissingStrategies(t *testing.T) {
	cases := map[string][]string{
		"mean":   {"fill missing with mean", "handle missing using mean", "replace missing with mean", "fix missing data with mean", "use mean for missing values"},
		"median": {"fill missing with median", "handle missing using median", "replace missing with median", "use median for missing"},
		"mode":   {"fill missing with mode", "handle missing using mode", "replace missing with mode", "use mode for missing"},
		"drop":   {"drop missing", "remove rows with missing", "delete missing values", "handle missing by drop", "drop rows with missing values"},
	}
	for want, cmds := range cases {
		for _, cmd := range cmds {
			assert.Equal(t, want, Resolve(cmd).FixMissing, cmd)
		}
	}
}

func TestResolve_OutlierMethods(t *testing.T) {
	cases := map[string][]string{
		"zscore": {"remove outliers using zscore", "drop outliers using z-score", "z-score outliers", "remove outliers using z score", "remove outliers", "delete outlier", "handle outliers"},
		"iqr":    {"remove outliers using iqr", "drop outliers using IQR", "iqr outliers", "interquartile range outliers"},
	}
	for want, cmds := range cases {
		for _, cmd := range cmds {
			assert.Equal(t, want, Resolve(cmd).DropOutliers, cmd)
		}
	}
}

func TestResolve_Types(t *testing.T) {
	for _, cmd := range []string{"standardize data types", "convert types", "fix data types", "normalize type"} {
		r := Resolve(cmd)
		assert.True(t, r.StandardizeTypes, cmd)
		assert.False(t, r.FixNames, cmd)
	}
}

func TestResolve_CombinedInstruction(t *testing.T) {
	r := Resolve("fix column names and remove outliers")
	assert.True(t, r.FixNames)
	assert.Equal(t, "zscore", r.DropOutliers)
	assert.Empty(t, r.FixMissing)
	assert.False(t, r.StandardizeTypes)
	assert.Equal(t, []string{"fix_names", "drop_outliers_general"}, r.Matched)
}

func TestResolve_FirstMatchWinsWithinCategory(t *testing.T) {
	assert.Equal(t, "median", Resolve("fill missing using median and drop missing").FixMissing)
	assert.Equal(t, "mean", Resolve("drop missing or fill missing with mean").FixMissing)
	assert.Equal(t, "zscore", Resolve("iqr outliers then zscore outliers").DropOutliers)
}

func TestResolve_EmptyAndUnmatched(t *testing.T) {
	for _, cmd := range []string{"", "   ", "make it pretty", "outliers"} {
		r := Resolve(cmd)
		assert.True(t, r.Empty(), cmd)
		assert.Equal(t, Resolution{}, r, cmd)
	}
}

func TestResolver_CustomRuleTable(t *testing.T) {
	rules := []Rule{
		{Name: "late", Category: CategoryMissing, Value: "drop", Priority: 5, Patterns: mustCompile(`missing`)},
		{Name: "early", Category: CategoryMissing, Value: "mode", Priority: 1, Patterns: mustCompile(`missing`)},
	}
	r := NewResolver(rules, nil).Resolve("missing stuff")
	assert.Equal(t, "mode", r.FixMissing)
	assert.Equal(t, []string{"early"}, r.Matched)
}

func TestSupportedCommands_AllResolve(t *testing.T) {
	groups := SupportedCommands()
	require.Len(t, groups, 5)
	for _, g := range groups {
		for _, ex := range g.Examples {
			assert.False(t, Resolve(ex).Empty(), "%s: %q", g.Title, ex)
		}
	}
}
