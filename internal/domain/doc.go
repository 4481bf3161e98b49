// Package domain contains the core business entities and value objects of
// the application: log entries extracted from line streams, conversation
// turns for record processing, and recorded analysis runs. It represents
// the heart of the system, independent of any specific infrastructure or
// delivery mechanism.
package domain
