// Command aircommit is a thin offline shell over the aircommit core:
// key generation, container build/open, QR frame splitting and joining,
// audio tone synthesis and decoding, fingerprints and check-word phrases.
//
// It touches only the files it is pointed at. No network, ever.
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/untreu2/aircommit/accode"
	"github.com/untreu2/aircommit/audio"
	"github.com/untreu2/aircommit/frame"
	"github.com/untreu2/aircommit/keys"
	"github.com/untreu2/aircommit/mnemonic"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "keygen":
		return cmdKeygen(args[1:], out, errOut)
	case "pubkey":
		return cmdPubkey(args[1:], out, errOut)
	case "build":
		return cmdBuild(args[1:], out, errOut)
	case "open":
		return cmdOpen(args[1:], out, errOut)
	case "fingerprint":
		return cmdFingerprint(args[1:], out, errOut)
	case "frame-split":
		return cmdFrameSplit(args[1:], out, errOut)
	case "frame-join":
		return cmdFrameJoin(args[1:], out, errOut)
	case "tones":
		return cmdTones(args[1:], out, errOut)
	case "audio-decode":
		return cmdAudioDecode(args[1:], out, errOut)
	case "mnemonic":
		return cmdMnemonic(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "aircommit: offline signed file transmission")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  aircommit keygen [--dir <dir>]")
	fmt.Fprintln(w, "  aircommit pubkey --key <acsec-file>")
	fmt.Fprintln(w, "  aircommit build --in <file> --key <acsec-file> [--out <ac-file>]")
	fmt.Fprintln(w, "  aircommit open --in <ac-file> --pub <acpub-file> --out <file>")
	fmt.Fprintln(w, "  aircommit fingerprint --in <ac-file>")
	fmt.Fprintln(w, "  aircommit frame-split --in <ac-file> [--chunk <n>]")
	fmt.Fprintln(w, "  aircommit frame-join --in <parts-file> [--out <ac-file>]")
	fmt.Fprintln(w, "  aircommit tones --in <ac-file> --out <pcm-file> [--rate <hz>]")
	fmt.Fprintln(w, "  aircommit audio-decode --in <pcm-file> [--rate <hz>] [--out <ac-file>]")
	fmt.Fprintln(w, "  aircommit mnemonic --in <ac-file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - key files hold one bech32 line: acsec1... (private) or acpub1... (public)")
	fmt.Fprintln(w, "  - pcm files are raw little-endian float64 mono samples, no header")
	fmt.Fprintln(w, "  - frame-join reads one scanned part line per input line, any order")
}

func cmdKeygen(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dir := fs.String("dir", ".", "directory for the key files")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	priv, err := keys.GeneratePrivateKey(nil)
	if err != nil {
		return fail(errOut, err)
	}
	pub, err := keys.DerivePublicKey(priv)
	if err != nil {
		return fail(errOut, err)
	}
	privText, err := keys.Encode(keys.KindPrivate, priv)
	if err != nil {
		return fail(errOut, err)
	}
	pubText, err := keys.Encode(keys.KindPublic, pub)
	if err != nil {
		return fail(errOut, err)
	}

	privPath := filepath.Join(*dir, "private_key_bech32.txt")
	pubPath := filepath.Join(*dir, "public_key_bech32.txt")
	if err := os.WriteFile(privPath, []byte(privText+"\n"), 0o600); err != nil {
		return fail(errOut, err)
	}
	if err := os.WriteFile(pubPath, []byte(pubText+"\n"), 0o644); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(out, "private key: %s\n", privPath)
	fmt.Fprintf(out, "public key:  %s\n", pubPath)
	return 0
}

func cmdPubkey(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("pubkey", flag.ContinueOnError)
	fs.SetOutput(errOut)
	keyPath := fs.String("key", "", "path to the acsec1... key file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	priv, err := readKeyFile(*keyPath, keys.KindPrivate)
	if err != nil {
		return fail(errOut, err)
	}
	pub, err := keys.DerivePublicKey(priv)
	if err != nil {
		return fail(errOut, err)
	}
	pubText, err := keys.Encode(keys.KindPublic, pub)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, pubText)
	return 0
}

func cmdBuild(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "file to sign and package")
	keyPath := fs.String("key", "", "path to the acsec1... key file")
	outPath := fs.String("out", "", "write the AC line here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	fileBytes, err := os.ReadFile(*in)
	if err != nil {
		return fail(errOut, err)
	}
	priv, err := readKeyFile(*keyPath, keys.KindPrivate)
	if err != nil {
		return fail(errOut, err)
	}
	line, err := accode.Build(fileBytes, priv)
	if err != nil {
		return fail(errOut, err)
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(line+"\n"), 0o644); err != nil {
			return fail(errOut, err)
		}
		fmt.Fprintf(out, "wrote %s (%d chars, fingerprint %s)\n", *outPath, len(line), accode.Fingerprint(line))
		return 0
	}
	fmt.Fprintln(out, line)
	return 0
}

func cmdOpen(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "file holding the AC line")
	pubPath := fs.String("pub", "", "path to the acpub1... key file")
	outPath := fs.String("out", "", "where to write the verified file bytes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	line, err := readLineFile(*in)
	if err != nil {
		return fail(errOut, err)
	}
	pub, err := readKeyFile(*pubPath, keys.KindPublic)
	if err != nil {
		return fail(errOut, err)
	}
	fileBytes, err := accode.Open(line, pub)
	if err != nil {
		return fail(errOut, err)
	}
	if *outPath == "" {
		return fail(errOut, errors.New("open: --out is required"))
	}
	if err := os.WriteFile(*outPath, fileBytes, 0o644); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(out, "signature valid; wrote %d bytes to %s\n", len(fileBytes), *outPath)
	return 0
}

func cmdFingerprint(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("fingerprint", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "file holding the AC line")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	line, err := readLineFile(*in)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, accode.Fingerprint(line))
	return 0
}

func cmdFrameSplit(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("frame-split", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "file holding the AC line")
	chunk := fs.Int("chunk", 500, "maximum characters per part")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	line, err := readLineFile(*in)
	if err != nil {
		return fail(errOut, err)
	}
	parts, err := frame.Split(line, *chunk)
	if err != nil {
		return fail(errOut, err)
	}
	for _, p := range parts {
		fmt.Fprintln(out, p.Render())
	}
	return 0
}

func cmdFrameJoin(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("frame-join", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "file with one scanned part line per line")
	outPath := fs.String("out", "", "write the reassembled AC line here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	f, err := os.Open(*in)
	if err != nil {
		return fail(errOut, err)
	}
	defer f.Close()

	var c frame.Collector
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		p, err := frame.ParseLine(raw)
		if err != nil {
			return fail(errOut, err)
		}
		if err := c.Add(p); err != nil {
			return fail(errOut, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fail(errOut, err)
	}

	line, err := c.Reassemble()
	if err != nil {
		var inc *frame.IncompleteError
		if errors.As(err, &inc) {
			fmt.Fprintf(errOut, "still missing parts %v of %d; re-scan those\n", inc.Missing, inc.Total)
			return 1
		}
		return fail(errOut, err)
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(line+"\n"), 0o644); err != nil {
			return fail(errOut, err)
		}
		fmt.Fprintf(out, "wrote %s\n", *outPath)
		return 0
	}
	fmt.Fprintln(out, line)
	return 0
}

func cmdTones(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("tones", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "file holding the AC line")
	outPath := fs.String("out", "", "raw float64 PCM output file")
	rate := fs.Int("rate", audio.DefaultSampleRate, "sample rate in Hz")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	line, err := readLineFile(*in)
	if err != nil {
		return fail(errOut, err)
	}
	samples, err := audio.Encode(line, *rate)
	if err != nil {
		return fail(errOut, err)
	}
	if *outPath == "" {
		return fail(errOut, errors.New("tones: --out is required"))
	}
	if err := writePCM(*outPath, samples); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(out, "wrote %d samples (%.2fs at %d Hz) to %s\n",
		len(samples), float64(len(samples))/float64(*rate), *rate, *outPath)
	return 0
}

func cmdAudioDecode(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("audio-decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "raw float64 PCM input file")
	outPath := fs.String("out", "", "write the decoded AC line here instead of stdout")
	rate := fs.Int("rate", audio.DefaultSampleRate, "sample rate in Hz")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	samples, err := readPCM(*in)
	if err != nil {
		return fail(errOut, err)
	}
	line, err := audio.Decode(samples, *rate)
	if err != nil {
		var te *audio.ToneError
		if errors.As(err, &te) {
			fmt.Fprintf(errOut, "undecodable audio at window %d (%.1f Hz); re-record that stretch\n", te.Window, te.PeakHz)
			return 1
		}
		return fail(errOut, err)
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(line+"\n"), 0o644); err != nil {
			return fail(errOut, err)
		}
		fmt.Fprintf(out, "wrote %s\n", *outPath)
		return 0
	}
	fmt.Fprintln(out, line)
	return 0
}

func cmdMnemonic(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("mnemonic", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "file holding the AC line")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	line, err := readLineFile(*in)
	if err != nil {
		return fail(errOut, err)
	}
	phrase, err := mnemonic.FromContainer(line)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, phrase)
	return 0
}

func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return 1
}

func readLineFile(path string) (string, error) {
	if path == "" {
		return "", errors.New("--in is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readKeyFile(path string, kind keys.Kind) ([]byte, error) {
	if path == "" {
		return nil, errors.New("key file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return keys.DecodeKind(strings.TrimSpace(string(data)), kind)
}

func writePCM(path string, samples []float64) error {
	buf := make([]byte, 8*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(s))
	}
	return os.WriteFile(path, buf, 0o644)
}

func readPCM(path string) ([]float64, error) {
	if path == "" {
		return nil, errors.New("--in is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("%s: size %d is not a whole number of float64 samples", path, len(data))
	}
	samples := make([]float64, len(data)/8)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return samples, nil
}
