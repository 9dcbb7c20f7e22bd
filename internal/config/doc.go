// Package config provides configuration structures and utilities for
// gemsearch. It defines the options for crawling capsules, building the
// index and answering queries, plus the optional .gemsearch YAML file that
// supplies seeds and per-host crawl rules.
package config
