// Package metrics summarizes a simulated response. Every metric observes the
// output y and input u after each step and reports one number.
package metrics
