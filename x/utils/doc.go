/*
Package utils provides decorators that are not bound to a single
extension: logging, panic recovery, savepoints, action tags and metrics.
*/
package utils
