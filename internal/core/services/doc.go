// Package services implements the driving ports. IngestService stores,
// extracts and indexes documents; QAService answers questions from a
// session's index through the Retriever, Synthesizer and Attributor.
package services
