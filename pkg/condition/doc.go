// Package condition defines the vocabulary used by showWhen rules: six
// symbolic codes, a multi-value membership prefix, a numeric range prefix,
// and literal equality as the fallback. Raw strings are parsed once into a
// tagged Condition and then matched against answers.
package condition
