/*
Package ltproc runs compiled letter-transducer dictionaries over text.

# Quick Start

Analyse a stream with a dictionary:

	d, err := ltproc.Open("en.automorf.bin", ltproc.OpenOptions{LazyNodes: true})
	if err != nil {
	    log.Fatal(err)
	}
	defer d.Close()

	p, err := ltproc.NewProcessor(d, ltproc.Options{Mode: ltproc.ModeAnalysis})
	if err != nil {
	    log.Fatal(err)
	}
	err = p.Process(os.Stdin, os.Stdout)

# Modes

  - ModeAnalysis: surface text to "^surface/analysis1/analysis2$" units
  - ModeDecomposition: analysis with compound decomposition of unknown words
  - ModeGenerationUnknown, ModeGenerationClean, ModeGenerationAll,
    ModeGenerationTagged: "^lexical$" units to surface text
  - ModeBilingual: source lexical units to target lexical units
  - ModePostgeneration: '~'-triggered orthographic rewrites
  - ModeTransliteration: character substitution
  - ModeSAO: analysis with XML-flavoured output

# Sharing

A Dictionary is read-only after Open and may back any number of
Processors in different goroutines. A Processor is not safe for
concurrent use.

Dictionaries are reference counted. Open returns one reference and
every Cache.Get adds one; Close drops one, and the mapping is released
with the last.

	cache, _ := ltproc.NewCache(8, ltproc.OpenOptions{LazyNodes: true})
	defer cache.Close()

	d, err := cache.Get("en.automorf.bin")
	if err != nil {
	    return err
	}
	defer d.Close()

# Error Handling

Errors carry a kind from package types and match its sentinels:

	if errors.Is(err, types.ErrCorruptDictionary) {
	    // the file is not a compiled dictionary
	}
	if errors.Is(err, types.ErrMalformedInput) {
	    // the input stream broke the escaping rules; the processor is still usable
	}
*/
package ltproc
