package contracts

import "reflect"

// TypeChecker decides whether a runtime value may be stored in a container
// declared for the allowed type.
type TypeChecker interface {
	AssertAllowed(value any, allowed reflect.Type) error
}

// Managed is implemented by persistent entity values. Change trackers compare
// managed elements by reference rather than by business equality.
type Managed interface {
	IsManaged() bool
}

// Keyed values expose the key that defines their equality when they are not
// compared by reference.
type Keyed interface {
	EqualityKey() any
}
