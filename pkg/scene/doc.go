// Package scene defines the scene model for landform.
// A scene is the immutable set of feature, brush and terrain requests that
// one script evaluation or config file describes. It is never mutated after
// construction; each evaluation produces a new scene.
package scene
