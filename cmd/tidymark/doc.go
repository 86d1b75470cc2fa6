// Command tidymark classifies browser bookmarks into a two-level taxonomy
// using an ensemble of rule, statistical, and optional LLM methods.
package main
