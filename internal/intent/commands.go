package intent

// CommandGroup is a titled list of example phrasings.
type CommandGroup struct {
	Title    string   `json:"title" yaml:"title"`
	Examples []string `json:"examples" yaml:"examples"`
}

// SupportedCommands returns example instructions the resolver understands.
func SupportedCommands() []CommandGroup {
	return []CommandGroup{
		{Title: "Column Names", Examples: []string{"fix column names", "clean headers", "standardize titles"}},
		{Title: "Missing Data", Examples: []string{"fill missing with mean", "handle missing using median", "drop rows with missing values"}},
		{Title: "Outliers", Examples: []string{"remove outliers", "drop outliers using iqr", "remove outliers using z-score"}},
		{Title: "Data Types", Examples: []string{"standardize data types", "convert data types", "fix data types"}},
		{Title: "Combined", Examples: []string{
			"fix column names and remove outliers",
			"standardize types and fill missing with median",
			"clean headers and drop outliers using iqr",
		}},
	}
}
