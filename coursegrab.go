// Package coursegrab provides a browser-driven crawler that collects
// downloadable course files from a learning-management site and packages
// them into one archive per course.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/, zip/).
package coursegrab
