// Package analysis provides the built-in task handlers: heuristic
// implementations of sentiment scoring, topic classification, dialogue
// pattern analysis, log file processing, batch learning, statistical
// analysis, data cleaning, and feature extraction. NewRegistry binds all
// of them to their type tags for dispatch by the task pool.
package analysis
