// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ToolNotFoundId Id = iota + 1
	InputFolderNotFoundId
	PackNotFoundId
	NothingToPatchId
	StageFailedId
	ConfigLoadFailedId
	PermissionDeniedId
	UnknownEncodingId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# External tool not found!

A tool this command needs could not be found on your PATH.

## Things you can try:
- Install the tool and make sure its directory is on your PATH
- Point modkit at the executable in your config file:
~~~cue
tools: {
	decompiler: "C:/tools/luadec.exe"
	container:  "C:/tools/UnsealedVerses.exe"
	texture:    "C:/tools/texconv.exe"
}
~~~
- Run ` + "`modkit config show`" + ` to see which paths are in effect`,
		extLinks: []HttpLink{"https://github.com/microsoft/DirectXTex/wiki/Texconv"},
	}

	inputFolderNotFoundIssue = &Issue{
		id: InputFolderNotFoundId,
		mdMsg: `
# Input folder not found!

The folder you asked modkit to process does not exist or is not a directory.

## Things you can try:
- Check the path for typos
- Quote paths that contain spaces
- Use an absolute path, or run modkit from the folder's parent`,
	}

	packNotFoundIssue = &Issue{
		id: PackNotFoundId,
		mdMsg: `
# No game pack found!

modkit looks for the game's pack file in the ` + "`input_pack`" + ` folder of the working directory.
The folder has been created for you if it was missing.

## Things you can try:
- Copy the original pack file into ` + "`input_pack`" + `
- Check that the pack extension matches ` + "`texture.pack_ext`" + ` in your config
- Use ` + "`--workdir`" + ` if your folders live somewhere else`,
	}

	nothingToPatchIssue = &Issue{
		id: NothingToPatchId,
		mdMsg: `
# Nothing to patch!

No image in ` + "`input_png`" + ` could be converted back to a texture, so no patched pack was written.

## Things you can try:
- Copy your edited images into ` + "`input_png`" + `
- Use images produced by ` + "`modkit unpack`" + `, which carry the texture format they need
- In sidecar mode, copy the ` + "`.format`" + ` file next to each image too
- Re-run with ` + "`--verbose`" + ` to see why each image was skipped`,
	}

	stageFailedIssue = &Issue{
		id: StageFailedId,
		mdMsg: `
# A pipeline stage failed!

An external tool reported an error on a step every later step depends on, so the run stopped.

## Things you can try:
- Read the tool's message above
- Make sure the pack file is the unmodified original from the game
- Re-run with ` + "`--clean`" + ` to start from empty working folders`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or contains invalid values.

## Things you can try:
- Run ` + "`modkit config path`" + ` to see which file is used
- Check the file's CUE syntax
- Write a fresh file with ` + "`modkit config init --force`" + `
- Remove the file to use built-in defaults`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

modkit could not read or write one of its working folders.

## Things you can try:
- Close the game or any editor holding the files open
- Check the folder permissions
- Move the working directory out of a protected location such as Program Files`,
	}

	unknownEncodingIssue = &Issue{
		id: UnknownEncodingId,
		mdMsg: `
# Unknown text encoding!

The encoding you named is not one modkit knows.

## Things you can try:
- Use one of: ` + "`cp437`, `cp932`, `shift_jis`, `windows-31j`, `euc-jp`, `cp1252`, `utf-8`" + `
- Encoding names are case-insensitive`,
	}

	issues = map[Id]*Issue{
		toolNotFoundIssue.Id():        toolNotFoundIssue,
		inputFolderNotFoundIssue.Id(): inputFolderNotFoundIssue,
		packNotFoundIssue.Id():        packNotFoundIssue,
		nothingToPatchIssue.Id():      nothingToPatchIssue,
		stageFailedIssue.Id():         stageFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
		unknownEncodingIssue.Id():     unknownEncodingIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
