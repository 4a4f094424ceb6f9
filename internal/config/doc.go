// Package config provides configuration structures and utilities for wikid.
// It defines the options of a search, the link filter rules, the
// similarity oracle selection and report generation preferences, and
// loads named profiles from the .wikid YAML file.
package config
