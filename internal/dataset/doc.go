// Package dataset materializes raw inputs into the directory layout and
// annotation format each downstream trainer expects: a flat instance-image
// directory for the generation workflow, and length-bounded token/tag
// sequence files plus a label vocabulary for the classification workflow.
//
// Everything here is plain file placement and format conversion. Tokenizer
// subword handling, augmentation and batching belong to the external
// training scripts.
package dataset
