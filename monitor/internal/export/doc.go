// Package export writes the latest line state as a Prometheus text file for
// node_exporter's textfile collector. The file is replaced atomically so the
// collector never reads a partial write.
package export
