// Package scripting runs HCL script files.
//
// A script is a sequence of action blocks executed in file order:
//
//	log     { message = "Building ${uservar.project}" }
//	uservar { name = "out", value = "${env.HOME}/out" }
//	open    { path = "src/main.go", line = 10 }
//	exec    { command = "make gen", work_dir = "." }
//
// Expressions may reference env.<NAME>, uservar.<name> (the base value in
// the active set) and the functions upper, lower, join, format and
// trimspace. A script is checked as a whole before anything runs; once it
// runs, a failing action is recorded and the remaining actions still run.
package scripting
