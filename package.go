//
// grade calculation for a class: scores from a gradebook are
// weighted into one total per student, and a letter grade is
// recommended from where that total sits relative to the
// class mean and standard deviation.
// results can be written as a roster+letter report file, or
// requested from the embedded web service.
//
package otfgrade
