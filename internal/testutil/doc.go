// SPDX-License-Identifier: MPL-2.0

// Package testutil holds fixtures shared by the package tests: Must* file and
// environment helpers that fail the test on error, ListDir for asserting folder
// contents, WritePNG for decodable images, and FakeRunner, a scripted stand-in
// for the external tools the pipelines invoke.
package testutil
