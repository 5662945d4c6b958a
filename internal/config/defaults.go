package config

// Input defaults.
const (
	DefaultInputDir         = "data"
	DefaultInputPattern     = "time_series_*.csv"
	DefaultInputMinFiles    = 4
	DefaultInputMaxFileSize = "10MB"
)

// Output defaults.
const (
	DefaultOutputDir             = ""
	DefaultOutputWideFile        = "trends_merged_GB_monthly.csv"
	DefaultOutputLongFile        = "trends_long_GB_monthly.csv"
	DefaultOutputMissing         = "empty"
	DefaultOutputMissingSentinel = "NaN"
	DefaultOutputSummaryFile     = ""
)

// Report defaults.
const (
	DefaultReportPreviewRows      = 5
	DefaultReportMaxMissingMonths = 10
	DefaultReportNoColor          = false
)

// Chart defaults.
const (
	DefaultChartEnabled = true
	DefaultChartOutput  = ""
	DefaultChartTitle   = "Google Trends Fashion Popularity (UK)"
	DefaultChartXAxis   = "Time"
	DefaultChartYAxis   = "Search Interest (0-100)"
	DefaultChartTheme   = "light"
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Telemetry defaults.
const (
	DefaultTelemetryOTLPEndpoint    = ""
	DefaultTelemetryOTLPInsecure    = false
	DefaultTelemetryMetricsTextfile = ""
)
