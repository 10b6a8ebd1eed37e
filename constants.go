package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeLabelInput
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpOpen
	FileOpExportPNG
	FileOpExportTXT
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmOverwriteFile
	ConfirmDelete
	ConfirmDiscardChanges
)

// A terminal cell covers cellWidth x cellHeight canvas units.
const (
	cellWidth  = 8
	cellHeight = 16
)

const (
	documentExt = ".json"
	pngExt      = ".png"
	txtExt      = ".txt"

	chromeRows = 2 // palette bar and status line
	zoomStep   = 1.25
	panStep    = 4 // cells
	maxSuggest = 3
)
