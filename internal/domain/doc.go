// Package domain models Taiwan MOENV real-time air-quality station data and
// the distance analysis built on it.
//
// # Data Source
//
// Records come from the MOENV open-data dataset aqx_p_432, one JSON object per
// monitoring station, refreshed hourly. Every value arrives as a string:
//
//	{"sitename":"中山","county":"臺北市","aqi":"42","pm2.5":"11",
//	 "latitude":"25.062361","longitude":"121.526528",
//	 "publishtime":"2024/04/26 15:00:00", ...}
//
// # Missing Values
//
// The upstream writes "" or "-" for readings a station did not report, and 0
// for unknown coordinates. All of these normalize to nil. A zero AQI is a
// real reading; a zero latitude or longitude is not.
//
// Publish times carry no zone and are read as Taiwan time (UTC+8).
//
// # Classification
//
// Distances from the reference point (Taipei Main Station) fall into five
// bands with inclusive upper bounds:
//
//	urban-core <=10 km | metro-region <=30 | northern-region <=100 |
//	central-region <=200 | southern-region beyond
//
// AQI is labelled twice: a coarse level for map coloring (good <=50,
// moderate <=100, unhealthy above) and a fine six-level category following the
// Taiwan AQI scale (0-50, 51-100, 101-150, 151-200, 201-300, 301-500), with
// upper-inclusive boundaries so fractional values are never left unbanded.
//
// # Statistics
//
// Summary statistics skip missing values before computing. Standard deviation
// is the sample (n-1) form; the median of an even count is the mean of the
// two middle values. Stations are ordered by distance, ties broken by site id
// and then site name, so nearest and farthest are deterministic.
package domain
