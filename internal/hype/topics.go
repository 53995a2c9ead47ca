package hype

// DailyTopics is the fixed ordered prompt list. Order matters: the daily
// topic is selected by index, so instances sharing this list show the same
// prompt on the same business-timezone date.
var DailyTopics = []string{
	"最近「助かる〜」と思ったことは？",
	"影で支えてくれている人は誰？",
	"今週、笑顔が素敵だった人は？",
	"素早いレスで助けてくれた人は？",
	"会議でナイスな発言をした人は？",
	"困っている時に声をかけてくれた人は？",
	"細かい気配りをしてくれた人は？",
	"技術的な質問に答えてくれた人は？",
	"新しい知識をシェアしてくれた人は？",
	"ムードメーカーだと思う人は？",
	"丁寧なドキュメントを書いてくれた人は？",
	"バグ修正・障害対応を頑張っていた人は？",
	"ランチや休憩で和ませてくれた人は？",
	"期待以上の成果を出していた人は？",
	"最近チャットでの反応が早い人は？",
	"地味だけど重要な仕事をしてくれた人は？",
	"新しい提案をしてくれた人は？",
	"周りをやる気にさせてくれる人は？",
	"整理整頓や掃除をしてくれた人は？",
	"いつも挨拶が気持ちいい人は？",
}
