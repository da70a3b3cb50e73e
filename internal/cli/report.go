// Package cli provides command-line interface utilities.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ZacharyZcR/vapid/internal/disasm"
	"github.com/ZacharyZcR/vapid/internal/pe"
	"github.com/fatih/color"
)

// Reporter formats translation results and PE analysis output.
type Reporter struct {
	out            io.Writer
	suspiciousOnly bool
}

// NewReporter creates a new reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// SetSuspiciousOnly limits the section report to RWX sections.
func (r *Reporter) SetSuspiciousOnly(suspicious bool) {
	r.suspiciousOnly = suspicious
}

// FormatResult renders a translation result as "0x<va> -> 0x<offset>", or
// "0x<va> -> ??" when the address is not backed by a section.
func FormatResult(res pe.Result) string {
	if !res.Mapped {
		return fmt.Sprintf("0x%X -> ??", res.VirtualAddress)
	}
	return fmt.Sprintf("0x%X -> 0x%X", res.VirtualAddress, res.FileOffset)
}

// PrintResult outputs one translation result line.
func (r *Reporter) PrintResult(res pe.Result) {
	_, _ = fmt.Fprintf(r.out, "0x%X -> ", res.VirtualAddress)
	if !res.Mapped {
		yellow := color.New(color.FgYellow)
		_, _ = yellow.Fprintln(r.out, "??")
		return
	}
	green := color.New(color.FgGreen)
	_, _ = green.Fprintf(r.out, "0x%X\n", res.FileOffset)
}

// PrintInfo outputs the analysis report.
func (r *Reporter) PrintInfo(info *pe.Info) {
	r.printHeader()
	r.printBasicInfo(info)
	r.printSections(info.Sections)
}

// PrintDisassembly outputs decoded instructions, one per line.
func (r *Reporter) PrintDisassembly(insts []disasm.Instruction) {
	yellow := color.New(color.FgYellow, color.Bold)
	_, _ = yellow.Fprintf(r.out, "\n【反汇编】(%d 条指令)\n", len(insts))

	for _, inst := range insts {
		_, _ = fmt.Fprintf(r.out, "  0x%08X  %08X  %-24s %s\n",
			inst.Address, inst.FileOffset, fmt.Sprintf("% X", inst.Bytes), inst.Text)
	}
}

// PrintCodeCaves outputs code caves found with the given minimum size.
func (r *Reporter) PrintCodeCaves(caves []pe.CodeCave, minSize uint32, imageBase uint32) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	_, _ = cyan.Fprintf(r.out, "\n========== Code Caves (最小 %d 字节) ==========\n", minSize)

	if len(caves) == 0 {
		_, _ = yellow.Fprintln(r.out, "未发现符合条件的 Code Caves")
		return
	}

	_, _ = green.Fprintf(r.out, "发现 %d 个可用 Code Caves:\n\n", len(caves))

	for i, cave := range caves {
		fillPattern := "0x00"
		if cave.FillByte == 0xCC {
			fillPattern = "0xCC (INT3)"
		}

		_, _ = fmt.Fprintf(r.out, "%d. 节区: %s\n", i+1, cave.Section)
		_, _ = fmt.Fprintf(r.out, "   文件偏移: 0x%08X\n", cave.Offset)
		_, _ = fmt.Fprintf(r.out, "   虚拟地址: 0x%08X\n", uint64(imageBase)+uint64(cave.RVA))
		_, _ = fmt.Fprintf(r.out, "   大小:     %d 字节\n", cave.Size)
		_, _ = fmt.Fprintf(r.out, "   填充:     %s\n\n", fillPattern)
	}
}

func (r *Reporter) printHeader() {
	cyan := color.New(color.FgCyan, color.Bold)
	_, _ = cyan.Fprintln(r.out, "\n╔════════════════════════════════════════╗")
	_, _ = cyan.Fprintln(r.out, "║            vapid 分析报告              ║")
	_, _ = cyan.Fprintln(r.out, "╚════════════════════════════════════════╝")
}

func (r *Reporter) printBasicInfo(info *pe.Info) {
	yellow := color.New(color.FgYellow, color.Bold)
	_, _ = yellow.Fprintln(r.out, "\n【基本信息】")

	_, _ = fmt.Fprintf(r.out, "  %-20s: %s\n", "文件路径", info.FilePath)
	_, _ = fmt.Fprintf(r.out, "  %-20s: %s\n", "文件大小", formatSize(info.FileSize))
	_, _ = fmt.Fprintf(r.out, "  %-20s: %s\n", "架构", info.Architecture)
	_, _ = fmt.Fprintf(r.out, "  %-20s: 0x%X\n", "入口点", info.EntryPoint)
	_, _ = fmt.Fprintf(r.out, "  %-20s: 0x%X\n", "镜像基址", info.ImageBase)

	if info.Checksum == nil {
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %-20s: ", "校验和")
	switch {
	case info.Checksum.Stored == 0:
		gray := color.New(color.FgHiBlack)
		_, _ = gray.Fprint(r.out, "未设置")
	case info.Checksum.Valid:
		green := color.New(color.FgGreen)
		_, _ = green.Fprintf(r.out, "✓ 有效 (0x%08X)", info.Checksum.Stored)
	default:
		red := color.New(color.FgRed, color.Bold)
		_, _ = red.Fprintf(r.out, "✗ 无效 (存储: 0x%08X, 计算: 0x%08X)",
			info.Checksum.Stored, info.Checksum.Computed)
	}
	_, _ = fmt.Fprintln(r.out)
}

func (r *Reporter) printSections(sections []pe.SectionInfo) {
	if r.suspiciousOnly {
		var suspicious []pe.SectionInfo
		for _, s := range sections {
			if s.Permissions == "RWX" {
				suspicious = append(suspicious, s)
			}
		}
		sections = suspicious
	}

	yellow := color.New(color.FgYellow, color.Bold)
	if r.suspiciousOnly {
		_, _ = yellow.Fprintf(r.out, "\n【可疑节区】(共 %d 个)\n", len(sections))
	} else {
		_, _ = yellow.Fprintf(r.out, "\n【节区信息】(共 %d 个)\n", len(sections))
	}

	if len(sections) == 0 {
		if r.suspiciousOnly {
			_, _ = fmt.Fprintln(r.out, "  未发现可疑节区")
		} else {
			_, _ = fmt.Fprintln(r.out, "  未发现节区")
		}
		return
	}

	_, _ = fmt.Fprintln(r.out, strings.Repeat("-", 100))
	_, _ = fmt.Fprintf(r.out, "  %-10s %-12s %-12s %-12s %-12s %-6s %-8s\n",
		"名称", "虚拟地址", "虚拟大小", "文件偏移", "原始大小", "权限", "熵")
	_, _ = fmt.Fprintln(r.out, strings.Repeat("-", 100))

	for _, section := range sections {
		permColor := color.New(color.FgWhite)
		if section.Permissions == "RWX" {
			permColor = color.New(color.FgRed, color.Bold)
		} else if strings.Contains(section.Permissions, "X") {
			permColor = color.New(color.FgYellow)
		}

		_, _ = fmt.Fprintf(r.out, "  %-10s 0x%08X   0x%08X   0x%08X   %-12s ",
			section.Name,
			section.VirtualAddress,
			section.VirtualSize,
			section.PointerToRawData,
			formatSize(int64(section.Size)),
		)
		_, _ = permColor.Fprintf(r.out, "%-6s", section.Permissions)
		_, _ = fmt.Fprintf(r.out, " %.2f\n", section.Entropy)
	}
	_, _ = fmt.Fprintln(r.out, strings.Repeat("-", 100))
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
