// Package util holds small generic helpers shared by the editor packages
package util
