// Package build compiles test programs against the library under test.
//
// A Resolver asks pkg-config for the compiler and linker flags of the
// library once per run; a Builder then compiles one executable per test
// case with those flags appended.
package build
