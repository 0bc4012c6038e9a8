package commands

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// cpuSample is short enough to answer inside the interaction deadline.
const cpuSample = 250 * time.Millisecond

// SystemStats holds host, runtime and bot statistics
type SystemStats struct {
	Hostname string
	Platform string
	Uptime   time.Duration

	CPUModel   string
	CPUThreads int
	CPUUsage   float64

	TotalMemory   uint64
	UsedMemory    uint64
	MemoryPercent float64

	GoVersion  string
	GoRoutines int
	MemAlloc   uint64
	NumGC      uint32

	BotUptime time.Duration
	Guilds    int
	Latency   time.Duration
}

// handleStats shows host and runtime statistics
func (h *Handler) handleStats(ctx context.Context, i *discordgo.Interaction) error {
	return h.respondEmbeds(ctx, i, false, statsEmbed(h.gatherStats(ctx)))
}

// gatherStats collects what it can; missing host data stays zero.
func (h *Handler) gatherStats(ctx context.Context) *SystemStats {
	stats := &SystemStats{}

	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		stats.Hostname = hostInfo.Hostname
		stats.Platform = fmt.Sprintf("%s %s (%s)", hostInfo.Platform, hostInfo.PlatformVersion, hostInfo.KernelArch)
		stats.Uptime = time.Duration(hostInfo.Uptime) * time.Second
	}

	if cpuInfo, err := cpu.InfoWithContext(ctx); err == nil && len(cpuInfo) > 0 {
		stats.CPUModel = cpuInfo[0].ModelName
	}
	stats.CPUThreads = runtime.NumCPU()
	if pct, err := cpu.PercentWithContext(ctx, cpuSample, false); err == nil && len(pct) > 0 {
		stats.CPUUsage = pct[0]
	}

	if memInfo, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.TotalMemory = memInfo.Total
		stats.UsedMemory = memInfo.Used
		stats.MemoryPercent = memInfo.UsedPercent
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.GoVersion = runtime.Version()
	stats.GoRoutines = runtime.NumGoroutine()
	stats.MemAlloc = m.Alloc
	stats.NumGC = m.NumGC

	stats.BotUptime = time.Since(h.started)
	stats.Guilds = h.profiles.Len()
	stats.Latency = h.gateway.HeartbeatLatency()

	return stats
}

func statsEmbed(stats *SystemStats) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "📊 System Statistics",
		Color: 0x00BFFF,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🖥️ Host",
				Value: fmt.Sprintf("**Hostname:** `%s`\n**Platform:** `%s`\n**Uptime:** `%s`",
					stats.Hostname, stats.Platform, formatDuration(stats.Uptime)),
			},
			{
				Name: "⚡ CPU",
				Value: fmt.Sprintf("**Model:** `%s`\n**Threads:** `%d`\n**Usage:** `%.2f%%`\n%s",
					truncateString(stats.CPUModel, 40), stats.CPUThreads, stats.CPUUsage,
					createProgressBar(stats.CPUUsage)),
				Inline: true,
			},
			{
				Name: "💾 Memory",
				Value: fmt.Sprintf("**Total:** `%s`\n**Used:** `%s`\n**Usage:** `%.2f%%`\n%s",
					formatBytes(stats.TotalMemory), formatBytes(stats.UsedMemory), stats.MemoryPercent,
					createProgressBar(stats.MemoryPercent)),
				Inline: true,
			},
			{
				Name: "🐻 Bot",
				Value: fmt.Sprintf("**Uptime:** `%s`\n**Configured servers:** `%d`\n**Latency:** `%dms`",
					formatDuration(stats.BotUptime), stats.Guilds, stats.Latency.Milliseconds()),
				Inline: true,
			},
			{
				Name: "🔷 Go Runtime",
				Value: fmt.Sprintf("**Version:** `%s`\n**Goroutines:** `%d`\n**Allocated:** `%s`\n**GC Cycles:** `%d`",
					stats.GoVersion, stats.GoRoutines, formatBytes(stats.MemAlloc), stats.NumGC),
				Inline: true,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func createProgressBar(percent float64) string {
	filled := int(percent / 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "`"
}

func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
