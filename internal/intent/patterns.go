package intent

import "regexp"

// Category groups rules that compete for the same directive.
type Category string

const (
	CategoryNames    Category = "fix_names"
	CategoryMissing  Category = "fix_missing"
	CategoryOutliers Category = "drop_outliers"
	CategoryTypes    Category = "standardize_types"
)

// Rule maps a set of phrasings to one directive value. Within a category, rules are tried
// by ascending Priority and the first rule with any matching pattern wins.
type Rule struct {
	Name     string
	Category Category
	Value    string
	Priority int
	Patterns []*regexp.Regexp
}

func mustCompile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func fillPatterns(strategy string) []*regexp.Regexp {
	return mustCompile(
		`(fill|handle|fix)\s+missing\s+(data\s+)?(with\s+|using\s+)?`+strategy,
		strategy+`\s+(for\s+)?missing`,
		`replace\s+missing\s+(with\s+)?`+strategy,
	)
}

// DefaultRules is the pattern table used by Resolve.
var DefaultRules = []Rule{
	{
		Name: "fix_names", Category: CategoryNames, Value: "true", Priority: 0,
		Patterns: mustCompile(
			`fix\s+(the\s+)?(column\s+)?(names?|headers?|titles?)`,
			`clean\s+(the\s+)?(column\s+)?(names?|headers?|titles?)`,
			`standardize\s+(the\s+)?(column\s+)?(names?|headers?|titles?)`,
			`normalize\s+(the\s+)?(column\s+)?(names?|headers?|titles?)`,
		),
	},
	{Name: "fix_missing_mean", Category: CategoryMissing, Value: "mean", Priority: 0, Patterns: fillPatterns("mean")},
	{Name: "fix_missing_median", Category: CategoryMissing, Value: "median", Priority: 1, Patterns: fillPatterns("median")},
	{Name: "fix_missing_mode", Category: CategoryMissing, Value: "mode", Priority: 2, Patterns: fillPatterns("mode")},
	{
		Name: "fix_missing_drop", Category: CategoryMissing, Value: "drop", Priority: 3,
		Patterns: mustCompile(
			`drop\s+(rows\s+with\s+)?missing`,
			`remove\s+(rows\s+with\s+)?missing`,
			`delete\s+(rows\s+with\s+)?missing`,
			`(handle|fix)\s+missing\s+(data\s+)?(by\s+)?drop`,
		),
	},
	{
		Name: "drop_outliers_zscore", Category: CategoryOutliers, Value: "zscore", Priority: 0,
		Patterns: mustCompile(
			`remove\s+outliers\s+(using\s+)?z.?score`,
			`drop\s+outliers\s+(using\s+)?z.?score`,
			`z.?score\s+outliers?`,
		),
	},
	{
		Name: "drop_outliers_iqr", Category: CategoryOutliers, Value: "iqr", Priority: 1,
		Patterns: mustCompile(
			`remove\s+outliers\s+(using\s+)?iqr`,
			`drop\s+outliers\s+(using\s+)?iqr`,
			`iqr\s+outliers?`,
			`interquartile\s+range\s+outliers?`,
		),
	},
	{
		// bare "remove outliers" defaults to z-score
		Name: "drop_outliers_general", Category: CategoryOutliers, Value: "zscore", Priority: 2,
		Patterns: mustCompile(
			`remove\s+outliers?`,
			`drop\s+outliers?`,
			`delete\s+outliers?`,
			`(fix|handle)\s+outliers?`,
		),
	},
	{
		Name: "standardize_types", Category: CategoryTypes, Value: "true", Priority: 0,
		Patterns: mustCompile(
			`standardize\s+(data\s+)?types?`,
			`convert\s+(data\s+)?types?`,
			`fix\s+(data\s+)?types?`,
			`normalize\s+(data\s+)?types?`,
		),
	},
}

// Categories lists the categories in evaluation order.
var Categories = []Category{CategoryNames, CategoryMissing, CategoryOutliers, CategoryTypes}
