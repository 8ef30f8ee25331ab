// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"bytes"
	"io"
	"strings"

	"github.com/soulsmods/bhd5/internal/binder"
)

// extensionFolders maps a recognized extension to its canonical archive
// folder, the inverse of GuessExtension's structural/prefix probes.
var extensionFolders = map[string]string{
	".flv":        "model",
	".flver":      "model",
	".smd":        "model",
	".mdl":        "model",
	".msb":        "model/map",
	".nva":        "model/map/ch_nav",
	".hnav":       "model/map/ch_nav",
	".htr":        "model/map/ch_nav",
	".drb":        "lang/menu",
	".fmg":        "lang/text",
	".tpf":        "image",
	".dds":        "image",
	".png":        "image",
	".fsb":        "sound",
	".fev":        "sound",
	".lua":        "script",
	".lc":         "script",
	".evd":        "script",
	".emevd":      "script",
	".eld":        "script",
	".luainfo":    "script",
	".mtd":        "material",
	".tae":        "tae",
	".xml":        "system",
	".ini":        "system",
	".txt":        "system",
	".pem":        "system",
	".properties": "system",
	".param":      "param",
	".paramdef":   "param/def",
	".def":        "param/def",
	".tdf":        "param/tdf",
	".dbp":        "dbmenu",
	".pam":        "movie",
	".ffx":        "sfx",
}

// GuessFolder returns the canonical folder for one entry payload, given its
// guessed extension (per GuessExtension) and the payload bytes themselves.
// It strips a trailing ".dcx" suffix first (recursing on the inner payload
// and appending "/dcx" to the result), peeks bnd/bhd archives for their most
// frequent inner extension (folder "bind/<inner_folder>"), falling back to
// bare "bind" when no inner content can be peeked or matched, and otherwise
// falls back to the extension/folder lookup table or, failing that, the
// extension itself without its leading dot, lowercased.
func GuessFolder(ext string, data []byte) string {
	if strings.HasSuffix(ext, ".dcx") {
		inner := strings.TrimSuffix(ext, ".dcx")

		if decoded, err := DecompressDCX(bytes.NewReader(data)); err == nil {
			if innerData, rerr := io.ReadAll(decoded); rerr == nil {
				return folderForExtension(inner, innerData) + "/dcx"
			}
		}

		return folderForExtension(inner, nil) + "/dcx"
	}

	return folderForExtension(ext, data)
}

// folderForExtension resolves the non-DCX folder-guess rules: bnd/bhd inner
// peek (falling back to bare "bind"), then the extension/folder table, then
// the extension itself lowercased without its leading dot.
func folderForExtension(ext string, data []byte) string {
	if ext == ".bnd" || ext == ".bhd" {
		if folder, ok := guessBindFolder(data); ok {
			return folder
		}

		return "bind"
	}

	if folder, ok := extensionFolders[ext]; ok {
		return folder
	}

	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// guessBindFolder peeks the inner entry names of a BND3/BND4 archive and
// returns "bind/<most frequent inner extension's folder>".
func guessBindFolder(data []byte) (string, bool) {
	names, err := binder.PeekEntryNames(bytes.NewReader(data))
	if err != nil || len(names) == 0 {
		return "", false
	}

	counts := make(map[string]int, len(names))
	for _, name := range names {
		ext := extOf(name)
		counts[ext]++
	}

	var bestExt string
	var bestCount int
	for ext, count := range counts {
		if count > bestCount {
			bestExt, bestCount = ext, count
		}
	}

	folder, ok := extensionFolders[bestExt]
	if !ok {
		return "", false
	}

	return "bind/" + folder, true
}

// extOf returns the extension (with leading dot) of name, or "" if none.
func extOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}

	return strings.ToLower(name[idx:])
}
