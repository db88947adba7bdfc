// Package logger provides structured logging built on zerolog.
//
// A global logger is initialized once from config at startup; packages obtain
// component-tagged child loggers via WithComponent. Field helpers keep key
// names consistent across the core.
package logger
