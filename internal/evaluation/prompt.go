package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/speaklab/retell-be/internal/asr"
)

// Prompt construction is pure and deterministic: the same transcripts always
// produce the same prompt text. The JSON Schemas embedded below are the output
// contract the LLM is instructed to honor; the program enforces it only by
// post-hoc parsing.

// BuildCardPrompt composes the single-card diagnostic instruction, embedding
// both transcripts and the missing-word list as serialized JSON.
func BuildCardPrompt(original, practice *asr.Transcript, missingWords []string) string {
	if missingWords == nil {
		missingWords = []string{}
	}

	var b strings.Builder
	b.WriteString("你是一位顶级的英语口语诊断专家，擅长通过对比标准发音和学生发音的详细语音数据（ASR）来提供精准反馈。所有分析内容必须使用中文。\n\n")

	b.WriteString("你会收到两份核心的 ASR 数据包：\n")
	b.WriteString("1. `original_asr_data`：标准发音音频的转录和逐词语音数据。\n")
	b.WriteString("2. `practice_asr_data`：学生复述音频的转录和逐词语音数据。\n")
	b.WriteString("此外，你还会收到一个 `missing_words` 列表，列出学生复述中遗漏的单词。\n\n")

	b.WriteString("你的任务是：像一位数据驱动的教练一样，对这两份数据进行深度对比分析，并严格按照下面的 JSON Schema 输出一份诊断报告。\n\n")

	b.WriteString("**输出 JSON Schema：**\n")
	b.WriteString(mustJSONIndent(cardReportSchemaDoc))
	b.WriteString("\n\n**各字段分析要求：**\n")
	b.WriteString("1. `meaning_fidelity`：评估学生复述是否完整还原了原句的含义。\n")
	b.WriteString("2. `missing_details`：结合 `missing_words`，清晰列出遗漏的关键信息；如果没有遗漏，给予肯定。\n")
	b.WriteString("3. `added_inaccuracies`：列出学生添加的、原句中不存在或与原意不符的内容。\n")
	b.WriteString("4. `expression_comparison`：对比原句中的地道表达、高级词汇与学生的实际用词。\n")
	b.WriteString("5. `fluency_assessment`：对比两份数据中的逐词时间戳，评估语速、停顿与节奏模仿度。\n")
	b.WriteString("6. `critical_pronunciation_issues`：遍历 `practice_asr_data.words`，对 `confidence` 较低（如低于 0.85）的单词，对照 `original_asr_data` 指出最关键的发音问题，最多两个，并给出正确的发音提示。\n")
	b.WriteString("7. `overall_score`：0 到 100 的整数综合分。评分权重固定：内容含义还原 50%，流利度与节奏 30%，表达地道度 20%。\n\n")

	b.WriteString("**输入数据：**\n")
	fmt.Fprintf(&b, "`original_asr_data`: %s\n", mustJSONIndent(original))
	fmt.Fprintf(&b, "`practice_asr_data`: %s\n", mustJSONIndent(practice))
	fmt.Fprintf(&b, "`missing_words`: %s\n\n", mustJSON(missingWords))

	b.WriteString("请现在开始你的分析。输出必须是一个可以被程序直接解析的、格式正确的 JSON 对象，不要附加任何解释文字或 Markdown 代码块。\n")

	return b.String()
}

// BuildSummaryPrompt composes the round-level aggregation instruction from the
// per-card diagnostic reports (card identifier -> report).
func BuildSummaryPrompt(reports map[string]json.RawMessage) string {
	var b strings.Builder
	b.WriteString("你是一位经验丰富的英语教学总监，正在审查一位学生在一轮复述练习中的所有表现。你的助教（AI 诊断专家）已经为每个句子提供了 JSON 格式的深度诊断报告。所有分析内容必须使用中文。\n\n")

	b.WriteString("你的任务是：仔细阅读每一张卡片的诊断报告，从全轮的角度总结学生的表现，并严格按照下面的 JSON Schema 输出最终的汇总报告。\n\n")

	b.WriteString("**输出 JSON Schema：**\n")
	b.WriteString(mustJSONIndent(summaryReportSchemaDoc))
	b.WriteString("\n\n**各字段分析要求：**\n")
	b.WriteString("1. `performance_overview`：整体表现概述，包含 0 到 100 的最终整数评分和一句总评。\n")
	b.WriteString("2. `error_patterns`：从所有卡片中归纳 1 到 3 个按重要性排序的跨卡片错误模式；每个模式包含观察到的具体表现（observed_behavior）和推测的听力或发音根因（root_cause）。\n")
	b.WriteString("3. `vocabulary_focus`：列出 3 到 4 个需要重点巩固的词汇或语块。\n")
	b.WriteString("4. `native_speech_insight`：给出一条关于母语者连读、弱读或节奏习惯的洞察，帮助学生向母语表达靠拢。\n\n")

	b.WriteString("**学生本轮练习的深度诊断数据如下（卡片 ID -> 诊断报告）：**\n")
	// map keys are sorted by json.Marshal, so the prompt stays deterministic
	b.WriteString(mustJSONIndent(reports))
	b.WriteString("\n\n请严格按照以上要求输出汇总报告。输出必须是一个可以被程序直接解析的、格式正确的 JSON 对象，不要附加任何解释文字或 Markdown 代码块。\n")

	return b.String()
}
