// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

/*
Package bhd5 packs and unpacks BHD/BDT split archives: a .bhd header file
describing a hashed bucket table of entries, and a .bdt data file holding
their raw bytes. It also offers a name dictionary for recovering paths from
hashes, RSA and AES primitives for the encrypted variants some game
generations use, and content-sniffing helpers for entries whose name was
never recovered.

# Packing

Pack streams caller-provided inputs into a fresh data file, then writes the
matching header:

	p := bhd5.NewPacker(bhd5.PackOptions{Generation: bhd5.GameEldenRing})
	binder, err := p.Pack("out.bdt", []bhd5.PackInput{
	    {Path: "chr/c0000.anibnd.dcx", Open: func() (io.ReadCloser, error) {
	        return os.Open("src/chr/c0000.anibnd.dcx")
	    }},
	})
	if err != nil {
	    return err
	}
	if err := bhd5.WriteHeader("out.bhd", binder); err != nil {
	    return err
	}

PackAsync accepts a context and a progress callback; cancellation is
checked once per entry, and a cancelled pack leaves whatever data has
already been appended to the .bdt file in place.

# Unpacking

Read a header back and resolve its hash-only entries against a name list
before extracting:

	binder, err := bhd5.ReadHeader("out.bhd")
	if err != nil {
	    return err
	}
	dict, err := bhd5.FromPath(nameListFile, bhd5.DictionaryOptions{Bit64: true})
	if err != nil {
	    return err
	}
	bhd5.ResolveNames(binder, dict)

	u := bhd5.NewUnpacker(binder, "out.bdt", bhd5.UnpackOptions{
	    FileMode: bhd5.UnpackSkipExisting,
	})
	if err := u.Unpack("dst/"); err != nil {
	    return err
	}

UnpackAsync bounds total in-flight decoded payload bytes
(UnpackOptions.MaxInFlightBytes) rather than just goroutine count, so a few
huge entries can't exhaust memory even under high concurrency.

# Encrypted headers

Some generations wrap the header bytes in a legacy raw-RSA envelope before
the bucket table is readable:

	dec, err := bhd5.NewHeaderDecryptor(publicKeyPEM)
	if err != nil {
	    return err
	}
	binder, err := bhd5.ReadEncryptedHeader("out.bhd", dec)

Entries may additionally carry a per-entry AES key; NewEntryCrypt builds the
EntryHeader.Crypt capability the unpacker invokes automatically.

# Selecting a subset

	binder.SetSelected("chr/c0000.anibnd.dcx", "chr/c0001.anibnd.dcx")
	// or, by pattern:
	_ = binder.SetSelectedByRules([]pathrules.Rule{
	    {Action: pathrules.ActionInclude, Pattern: "chr/**"},
	}, pathrules.MatcherOptions{DefaultAction: pathrules.ActionExclude})

# Divided archives

DividedUnpacker drives several (header, data) pairs together and reports a
single aggregated progress fraction across all of them:

	du := bhd5.NewDividedUnpacker([]bhd5.DividedEntry{
	    {Binder: partBinder, DataPath: "part00.bdt"},
	    {Binder: chrBinder, DataPath: "chr.bdt"},
	}, bhd5.UnpackOptions{})
	if err := du.Unpack("dst/"); err != nil {
	    return err
	}

# Identifying unknown entries

When a dictionary doesn't cover every hash, GuessExtension and GuessFolder
classify a payload from its bytes alone, and RenameUnknownFiles applies both
to move "_unknown/<hash>" files on disk into their canonical folder layout:

	renamed, err := bhd5.RenameUnknownFiles("dst/", unresolvedRelPaths)
*/
package bhd5
