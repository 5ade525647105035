package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
		ok   bool
	}{
		{"utf8", []byte("hello\nworld"), "hello\nworld", true},
		{"utf8 bom", []byte("\xef\xbb\xbfhi"), "hi", true},
		{"utf16 le", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi", true},
		{"utf16 be", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi", true},
		{"nul byte", []byte("ab\x00cd"), "", false},
		{"invalid utf8", []byte{0xC3, 0x28, 0xA0}, "", false},
		{"empty", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeText(tt.data)
			if ok != tt.ok || got != tt.want {
				t.Errorf("DecodeText = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHexDump(t *testing.T) {
	data := []byte("ABCDEFGHIJKLMNOP\x00\x01z")
	lines := HexDump(data, 10)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	want := "00000000  41 42 43 44 45 46 47 48 49 4a 4b 4c 4d 4e 4f 50 ABCDEFGHIJKLMNOP"
	if lines[0] != want {
		t.Errorf("line 0 = %q\nwant     %q", lines[0], want)
	}
	if !strings.HasSuffix(lines[1], " ..z") || !strings.HasPrefix(lines[1], "00000010  00 01 7a ") {
		t.Errorf("line 1 = %q", lines[1])
	}

	big := make([]byte, 16*200)
	if got := len(HexDump(big, QuickHexLines)); got != QuickHexLines {
		t.Errorf("quick dump = %d lines, want %d", got, QuickHexLines)
	}
}

func TestDirectorySummary(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.txt"), make([]byte, 1024), 0644)
	os.WriteFile(filepath.Join(dir, ".hidden"), make([]byte, 1024), 0644)
	os.Mkdir(filepath.Join(dir, "sub"), 0755)

	lines, err := DirectorySummary(dir)
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"Files: 2", "Directories: 1", "Hidden: 1", "Size: 2.0 KB"} {
		if !strings.Contains(joined, want) {
			t.Errorf("summary missing %q:\n%s", want, joined)
		}
	}
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	os.WriteFile(path, []byte("one\r\ntwo\n\tthree\n"), 0644)

	c, err := Load(path, Options{Plain: true})
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != Text || len(c.Lines) != 3 || c.Lines[2] != "    three" {
		t.Errorf("Load = %+v", c)
	}
}

func TestLoadBinaryFallsBackToHex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	os.WriteFile(path, []byte{0, 1, 2, 3, 0xff}, 0644)

	c, err := Load(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != Hex || len(c.Lines) != 1 {
		t.Errorf("Load = %+v", c)
	}
}

func TestLoadCorruptImageFallsBackToHex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	os.WriteFile(path, []byte{0x89, 'P', 'N', 'G', 0, 0}, 0644)

	c, err := Load(path, Options{Width: 10, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != Hex {
		t.Errorf("Kind = %v, want Hex", c.Kind)
	}
}

func TestLoadImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 12), B: 80, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "pic.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	c, err := Load(path, Options{Width: 20, Height: 20})
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != Image {
		t.Fatalf("Kind = %v, want Image", c.Kind)
	}
	// 40x20 fitted into 20x40 pixels is 20x10, which is 5 text rows
	if len(c.Lines) != 5 {
		t.Errorf("rows = %d, want 5", len(c.Lines))
	}
	if n := strings.Count(c.Lines[0], "▀"); n != 20 {
		t.Errorf("cells = %d, want 20", n)
	}
}

func TestLoadDirectory(t *testing.T) {
	c, err := Load(t.TempDir(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != Directory || c.Lines[0] != "[Directory]" {
		t.Errorf("Load = %+v", c)
	}
}

func TestHighlightKeepsLineCount(t *testing.T) {
	src := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	lines := Highlight("main.go", src)
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5", len(lines))
	}
	if got := stripANSI(lines[0]); got != "package main" {
		t.Errorf("line 0 = %q", got)
	}

	plain := Highlight("no-lexer.zzz", "a\nb")
	if len(plain) != 2 || plain[0] != "a" {
		t.Errorf("plain = %q", plain)
	}
}

// stripANSI removes CSI escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && (s[i] < 0x40 || s[i] > 0x7e) {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
